package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goodnight/domain/events"
	memoryrepo "goodnight/infrastructure/persistence/memory"
	apperrors "goodnight/pkg/errors"
)

// recordingPublisher captures published events in order
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) all() []events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.DomainEvent(nil), p.events...)
}

func newSleepFixture() (*SleepService, *memoryrepo.SessionRepository, *recordingPublisher) {
	sessions := memoryrepo.NewSessionRepository()
	publisher := &recordingPublisher{}
	svc := NewSleepService(sessions, publisher, zap.NewNop())
	return svc, sessions, publisher
}

func TestSleepServiceClockIn(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active session", func(t *testing.T) {
		svc, _, publisher := newSleepFixture()

		session, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", session.UserID)
		assert.True(t, session.IsActive())

		published := publisher.all()
		require.Len(t, published, 1)
		assert.Equal(t, "session.clocked_in", published[0].GetEventType())
		assert.Equal(t, session.ID, published[0].GetAggregateID())
	})

	t.Run("second clock-in while active is a conflict", func(t *testing.T) {
		svc, _, _ := newSleepFixture()

		_, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)

		_, err = svc.ClockIn(ctx, "alice")
		require.True(t, apperrors.IsConflict(err))
		assert.Equal(t, []string{"user must clock out before clocking in again"}, apperrors.GetAppError(err).Messages)
	})

	t.Run("different users do not conflict", func(t *testing.T) {
		svc, _, _ := newSleepFixture()

		_, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)
		_, err = svc.ClockIn(ctx, "bob")
		require.NoError(t, err)
	})

	t.Run("concurrent clock-ins produce exactly one session", func(t *testing.T) {
		svc, _, publisher := newSleepFixture()

		const attempts = 16
		var wg sync.WaitGroup
		results := make(chan error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.ClockIn(ctx, "alice")
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var successes, conflicts int
		for err := range results {
			switch {
			case err == nil:
				successes++
			case apperrors.IsConflict(err):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}

		assert.Equal(t, 1, successes)
		assert.Equal(t, attempts-1, conflicts)
		assert.Len(t, publisher.all(), 1)
	})
}

func TestSleepServiceClockOut(t *testing.T) {
	ctx := context.Background()
	clockIn := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)

	t.Run("completes the session with truncated duration", func(t *testing.T) {
		svc, _, publisher := newSleepFixture()
		svc.WithClock(func() time.Time { return clockIn })

		session, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)

		svc.WithClock(func() time.Time { return clockIn.Add(119 * time.Second) })
		completed, err := svc.ClockOut(ctx, session.ID, "alice")
		require.NoError(t, err)

		assert.True(t, completed.IsCompleted())
		assert.Equal(t, 1, completed.Duration())

		published := publisher.all()
		require.Len(t, published, 2)
		assert.Equal(t, "session.clocked_out", published[1].GetEventType())
	})

	t.Run("clocking out frees the user to clock in again", func(t *testing.T) {
		svc, _, _ := newSleepFixture()

		session, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)
		_, err = svc.ClockOut(ctx, session.ID, "alice")
		require.NoError(t, err)

		_, err = svc.ClockIn(ctx, "alice")
		require.NoError(t, err)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		svc, _, _ := newSleepFixture()

		_, err := svc.ClockOut(ctx, "missing", "alice")
		require.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, []string{"sleep record not found"}, apperrors.GetAppError(err).Messages)
	})

	t.Run("someone else's session reads as invalid, not missing", func(t *testing.T) {
		svc, _, _ := newSleepFixture()

		session, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)

		_, err = svc.ClockOut(ctx, session.ID, "bob")
		require.True(t, apperrors.IsInvalid(err))
		assert.Equal(t, []string{"invalid sleep record"}, apperrors.GetAppError(err).Messages)
	})

	t.Run("double clock-out is invalid", func(t *testing.T) {
		svc, _, _ := newSleepFixture()

		session, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)
		_, err = svc.ClockOut(ctx, session.ID, "alice")
		require.NoError(t, err)

		_, err = svc.ClockOut(ctx, session.ID, "alice")
		require.True(t, apperrors.IsInvalid(err))
		assert.Equal(t, []string{"clock_out_time is already set"}, apperrors.GetAppError(err).Messages)
	})

	t.Run("ownership is checked before completion state", func(t *testing.T) {
		svc, _, _ := newSleepFixture()

		session, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)
		_, err = svc.ClockOut(ctx, session.ID, "alice")
		require.NoError(t, err)

		_, err = svc.ClockOut(ctx, session.ID, "bob")
		assert.Equal(t, []string{"invalid sleep record"}, apperrors.GetAppError(err).Messages)
	})
}

func TestSleepServiceDeleteSession(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and emits", func(t *testing.T) {
		svc, sessions, publisher := newSleepFixture()

		session, err := svc.ClockIn(ctx, "alice")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteSession(ctx, session.ID))

		_, err = sessions.GetByID(ctx, session.ID)
		require.Error(t, err)

		published := publisher.all()
		require.Len(t, published, 2)
		assert.Equal(t, "session.deleted", published[1].GetEventType())
		assert.Equal(t, "alice", published[1].GetUserID())
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		svc, _, _ := newSleepFixture()

		err := svc.DeleteSession(ctx, "missing")
		require.True(t, apperrors.IsNotFound(err))
	})
}
