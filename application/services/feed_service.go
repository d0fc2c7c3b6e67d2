package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/application/validators"
	"goodnight/domain/entities"
	"goodnight/infrastructure/cache"
	"goodnight/pkg/common"
	apperrors "goodnight/pkg/errors"
	"goodnight/pkg/observability"
)

// rankedWindowFactor bounds the tier-2 window to a small multiple of the
// page size. Pagination past the bound silently returns nothing further; a
// recency/size bound traded against exhaustive correctness, on purpose.
const rankedWindowFactor = 20

// FeedUser is the owner identity embedded in each feed record
type FeedUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FeedRecord is one hydrated sleep session in the feed
type FeedRecord struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ClockInTime     time.Time  `json:"clock_in_time"`
	ClockOutTime    *time.Time `json:"clock_out_time"`
	DurationMinutes int        `json:"duration_minutes"`
	User            FeedUser   `json:"user"`
}

// FeedPage is one page of the followed-users sleep feed. There is no total
// count anywhere on it; that is the point of the design.
type FeedPage struct {
	Records []FeedRecord
	Meta    *common.PaginationMeta
}

// FeedService serves the followed-users sleep feed through two cache
// tiers: the follow-set (who do I follow) and the ranked window (which
// session ids, duration-descending, inside the date window). A feed read
// never counts or materializes the full matching set.
type FeedService struct {
	sessions ports.SessionRepository
	follows  ports.FollowRepository
	users    ports.UserRepository
	cache    ports.FeedCache
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewFeedService creates a new feed service
func NewFeedService(
	sessions ports.SessionRepository,
	follows ports.FollowRepository,
	users ports.UserRepository,
	feedCache ports.FeedCache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *FeedService {
	return &FeedService{
		sessions: sessions,
		follows:  follows,
		users:    users,
		cache:    feedCache,
		metrics:  metrics,
		logger:   logger,
	}
}

// FollowingSleepRecords returns one page of completed sessions belonging to
// the users the acting user follows, ranked by duration descending within
// the query's date window.
func (s *FeedService) FollowingSleepRecords(ctx context.Context, userID string, query validators.FeedQuery) (*FeedPage, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	followSet, err := s.followSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	// A user following no one gets an empty page without ever touching the
	// ranking path.
	if len(followSet) == 0 {
		return &FeedPage{
			Records: []FeedRecord{},
			Meta:    common.NewPaginationMeta(query.Page, query.Limit, 0),
		}, nil
	}

	windowIDs, err := s.rankedWindow(ctx, userID, followSet, query)
	if err != nil {
		return nil, err
	}

	pageIDs := common.SlicePage(windowIDs, query.Page, query.Limit)
	meta := common.NewPaginationMeta(query.Page, query.Limit, len(windowIDs))

	records, err := s.hydrate(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	return &FeedPage{Records: records, Meta: meta}, nil
}

// followSet resolves tier 1: the acting user's followed ids, cached for a
// few minutes and refreshed from the edge store on miss.
func (s *FeedService) followSet(ctx context.Context, userID string) ([]string, error) {
	if cached, ok := s.cache.GetFollowSet(userID); ok {
		s.metrics.RecordCacheHit("follow_set")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("follow_set")

	followedIDs, err := s.follows.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load follow set")
	}

	s.cache.SetFollowSet(userID, followedIDs)
	return followedIDs, nil
}

// rankedWindow resolves tier 2: the duration-ranked, bounded id sequence
// for this user/window/follow-set combination. The key carries the global
// latest-mutation timestamp, so any session write anywhere invalidates
// every ranked window at once; concurrent misses may each recompute, which
// is accepted since the underlying query is cheap.
func (s *FeedService) rankedWindow(ctx context.Context, userID string, followSet []string, query validators.FeedQuery) ([]string, error) {
	latest, err := s.sessions.LatestMutationAt(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read latest mutation timestamp")
	}

	key := cache.WindowKey(userID, query.DateStart, query.DateEnd, followSet, latest)

	if cached, ok := s.cache.GetRankedWindow(key); ok {
		s.metrics.RecordCacheHit("ranked_window")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("ranked_window")

	start, end := query.Window()
	bound := query.Limit * rankedWindowFactor

	sessions, err := s.sessions.CompletedForUsersBetween(ctx, followSet, start, end, bound)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query sleep sessions")
	}

	ids := make([]string, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}

	s.cache.SetRankedWindow(key, ids)

	s.logger.Debug("ranked window rebuilt",
		zap.String("userID", userID),
		zap.Int("followed", len(followSet)),
		zap.Int("windowSize", len(ids)),
	)

	return ids, nil
}

// hydrate batch-fetches the sliced ids and their owners, then re-orders the
// records to match the slice. Batch-fetch order is not trustworthy.
func (s *FeedService) hydrate(ctx context.Context, pageIDs []string) ([]FeedRecord, error) {
	if len(pageIDs) == 0 {
		return []FeedRecord{}, nil
	}

	sessions, err := s.sessions.FindByIDs(ctx, pageIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hydrate sleep sessions")
	}

	byID := make(map[string]*entities.SleepSession, len(sessions))
	userIDs := make([]string, 0, len(sessions))
	seen := make(map[string]bool)
	for _, session := range sessions {
		byID[session.ID] = session
		if !seen[session.UserID] {
			seen[session.UserID] = true
			userIDs = append(userIDs, session.UserID)
		}
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hydrate users")
	}
	usersByID := make(map[string]*entities.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	records := make([]FeedRecord, 0, len(pageIDs))
	for _, id := range pageIDs {
		session, ok := byID[id]
		if !ok {
			// The window can reference a session deleted since it was
			// cached; skip rather than fail the page.
			continue
		}

		record := FeedRecord{
			ID:              session.ID,
			UserID:          session.UserID,
			ClockInTime:     session.ClockInTime,
			ClockOutTime:    session.ClockOutTime,
			DurationMinutes: session.Duration(),
			User:            FeedUser{ID: session.UserID},
		}
		if user, ok := usersByID[session.UserID]; ok {
			record.User.Name = user.Name
		}
		records = append(records, record)
	}

	return records, nil
}
