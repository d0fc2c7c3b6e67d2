package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/domain/events"
)

// FeedCacheInvalidator subscribes to session mutation events and drops the
// tier-1 follow-set entries of everyone who follows the mutated session's
// owner. The fan-out targets the followers' "who do I follow" entries even
// though edge membership did not change: refreshing them forces fresh
// inputs into tier-2 key derivation on the followers' next reads. Tier 2
// needs nothing here; its key already embeds the global mutation timestamp.
type FeedCacheInvalidator struct {
	follows ports.FollowRepository
	cache   ports.FeedCache
	logger  *zap.Logger
}

// NewFeedCacheInvalidator creates a feed cache invalidator
func NewFeedCacheInvalidator(
	follows ports.FollowRepository,
	feedCache ports.FeedCache,
	logger *zap.Logger,
) *FeedCacheInvalidator {
	return &FeedCacheInvalidator{
		follows: follows,
		cache:   feedCache,
		logger:  logger,
	}
}

// HandleEvent implements ports.EventHandler for session.* events
func (i *FeedCacheInvalidator) HandleEvent(ctx context.Context, event events.DomainEvent) error {
	if !strings.HasPrefix(event.GetEventType(), "session.") {
		return nil
	}

	followerIDs, err := i.follows.FollowerIDs(ctx, event.GetUserID())
	if err != nil {
		return err
	}

	for _, followerID := range followerIDs {
		i.cache.InvalidateFollowSet(followerID)
	}

	i.logger.Debug("follow-set cache invalidated",
		zap.String("mutatedUserID", event.GetUserID()),
		zap.Int("followers", len(followerIDs)),
	)

	return nil
}
