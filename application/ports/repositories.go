package ports

import (
	"context"
	"errors"
	"time"

	"goodnight/domain/entities"
)

// ErrActiveSessionExists is the storage layer's signal that a clock-in lost
// the uniqueness race: the user already has a session with no clock-out.
// The lifecycle translates it into a Conflict outcome; it must come from an
// atomic constraint on the write, never from a check-then-act read.
var ErrActiveSessionExists = errors.New("active session already exists for user")

// ErrSessionNotFound is returned when a session id resolves to nothing
var ErrSessionNotFound = errors.New("sleep session not found")

// SessionRepository defines the interface for sleep session persistence
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation
type SessionRepository interface {
	// CreateActive persists a new active session, enforcing atomically that
	// the user has no other active session. Returns ErrActiveSessionExists
	// when the constraint rejects the write.
	CreateActive(ctx context.Context, session *entities.SleepSession) error

	// GetByID retrieves a session by its ID; ErrSessionNotFound when absent
	GetByID(ctx context.Context, id string) (*entities.SleepSession, error)

	// SaveCompleted persists a clocked-out session and releases the user's
	// active-session slot
	SaveCompleted(ctx context.Context, session *entities.SleepSession) error

	// Delete removes a session
	Delete(ctx context.Context, id string) error

	// FindByIDs batch-fetches sessions. Order of the result is not
	// guaranteed to follow the input ids.
	FindByIDs(ctx context.Context, ids []string) ([]*entities.SleepSession, error)

	// CompletedForUsersBetween returns completed sessions owned by any of
	// the given users whose clock-out falls in [start, end], ordered by
	// duration descending, truncated to limit rows.
	CompletedForUsersBetween(ctx context.Context, userIDs []string, start, end time.Time, limit int) ([]*entities.SleepSession, error)

	// CompletedBetween returns all completed sessions whose clock-out falls
	// in [start, end], for the daily summary job.
	CompletedBetween(ctx context.Context, start, end time.Time) ([]*entities.SleepSession, error)

	// LatestMutationAt returns the maximum last-modified timestamp across
	// all sessions in the store, used as a global cache-key component.
	LatestMutationAt(ctx context.Context) (time.Time, error)
}

// FollowRepository defines the interface for follow edge persistence
type FollowRepository interface {
	// Create persists a follow edge
	Create(ctx context.Context, edge *entities.FollowEdge) error

	// Delete removes a follow edge
	Delete(ctx context.Context, followerID, followedID string) error

	// Exists reports whether the edge (follower -> followed) is present
	Exists(ctx context.Context, followerID, followedID string) (bool, error)

	// FollowedIDs returns the set of user ids the given user follows
	FollowedIDs(ctx context.Context, followerID string) ([]string, error)

	// FollowerIDs returns the set of user ids following the given user
	FollowerIDs(ctx context.Context, followedID string) ([]string, error)
}

// UserRepository reads user identities; users are created externally
type UserRepository interface {
	// GetByID retrieves a user, or nil when absent
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// FindByIDs batch-fetches users
	FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error)
}

// SummaryRepository persists daily sleep summaries
type SummaryRepository interface {
	// Upsert writes the summary row for (user, date), replacing any prior row
	Upsert(ctx context.Context, summary *entities.DailySleepSummary) error

	// GetByUserAndDate retrieves a summary row, or nil when absent
	GetByUserAndDate(ctx context.Context, userID, date string) (*entities.DailySleepSummary, error)
}
