package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	// FollowSetTTL bounds tier-1 staleness between explicit invalidations
	FollowSetTTL = 5 * time.Minute
	// RankedWindowTTL bounds tier-2 lifetime; tier 2 otherwise
	// self-invalidates through the mutation timestamp in its key
	RankedWindowTTL = 10 * time.Minute
)

// Service is the process-wide feed cache. Tier 1 holds follow-sets keyed by
// follower id; tier 2 holds ranked, bounded session-id windows keyed by a
// composite window key. Entries are derived state only: dropping either
// tier at any moment loses nothing but latency.
type Service struct {
	followSets *ttlcache.Cache[string, []string]
	windows    *ttlcache.Cache[string, []string]
}

// NewService creates the cache service and starts its expiry loops
func NewService() *Service {
	s := &Service{
		followSets: ttlcache.New(
			ttlcache.WithTTL[string, []string](FollowSetTTL),
			ttlcache.WithDisableTouchOnHit[string, []string](),
		),
		windows: ttlcache.New(
			ttlcache.WithTTL[string, []string](RankedWindowTTL),
			ttlcache.WithDisableTouchOnHit[string, []string](),
		),
	}

	go s.followSets.Start()
	go s.windows.Start()

	return s
}

// GetFollowSet returns the cached follow-set for a user, if present
func (s *Service) GetFollowSet(userID string) ([]string, bool) {
	item := s.followSets.Get(userID)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// SetFollowSet caches a user's follow-set under the tier-1 TTL
func (s *Service) SetFollowSet(userID string, followedIDs []string) {
	s.followSets.Set(userID, followedIDs, ttlcache.DefaultTTL)
}

// InvalidateFollowSet drops a user's tier-1 entry
func (s *Service) InvalidateFollowSet(userID string) {
	s.followSets.Delete(userID)
}

// GetRankedWindow returns the cached ranked id sequence for a window key
func (s *Service) GetRankedWindow(key string) ([]string, bool) {
	item := s.windows.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// SetRankedWindow caches a ranked id sequence under the tier-2 TTL
func (s *Service) SetRankedWindow(key string, sessionIDs []string) {
	s.windows.Set(key, sessionIDs, ttlcache.DefaultTTL)
}

// Stop halts the expiry loops
func (s *Service) Stop() {
	s.followSets.Stop()
	s.windows.Stop()
}

// WindowKey derives the tier-2 composite key. The follow-set digest is
// order-independent, and the latest-mutation timestamp makes every ranked
// window self-invalidate on any session write anywhere in the system.
func WindowKey(userID, dateStart, dateEnd string, followSet []string, latestMutation time.Time) string {
	return fmt.Sprintf("feed:%s:%s:%s:%s:%d",
		userID, dateStart, dateEnd,
		FollowSetDigest(followSet),
		latestMutation.UnixNano(),
	)
}

// FollowSetDigest hashes a follow-set independent of element order
func FollowSetDigest(followSet []string) string {
	ids := make([]string, len(followSet))
	copy(ids, followSet)
	sort.Strings(ids)

	sum := sha256.Sum256([]byte(strings.Join(ids, ",")))
	return hex.EncodeToString(sum[:8])
}
