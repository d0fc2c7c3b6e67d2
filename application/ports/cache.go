package ports

import (
	"context"

	"goodnight/domain/events"
)

// FeedCache is the two-tier cache behind the followed-users sleep feed.
// Tier 1 maps a follower id to the set of ids they follow; tier 2 maps a
// composite window key to a ranked, bounded sequence of session ids. Both
// tiers are derived, best-effort state and may be dropped at any time.
type FeedCache interface {
	// GetFollowSet returns the cached follow-set for a user, if present
	GetFollowSet(userID string) ([]string, bool)

	// SetFollowSet caches a user's follow-set under the tier-1 TTL
	SetFollowSet(userID string, followedIDs []string)

	// InvalidateFollowSet drops a user's tier-1 entry
	InvalidateFollowSet(userID string)

	// GetRankedWindow returns the cached ranked id sequence for a window key
	GetRankedWindow(key string) ([]string, bool)

	// SetRankedWindow caches a ranked id sequence under the tier-2 TTL
	SetRankedWindow(key string, sessionIDs []string)
}

// EventPublisher publishes domain events after successful commits
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// EventHandler consumes domain events
type EventHandler interface {
	HandleEvent(ctx context.Context, event events.DomainEvent) error
}
