package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodnight/application/ports"
	"goodnight/domain/entities"
)

func completed(t *testing.T, repo *SessionRepository, userID string, clockIn time.Time, minutes int) *entities.SleepSession {
	t.Helper()
	ctx := context.Background()

	session := entities.NewSleepSession(userID, clockIn)
	require.NoError(t, repo.CreateActive(ctx, session))
	require.NoError(t, session.ClockOut(clockIn.Add(time.Duration(minutes)*time.Minute)))
	require.NoError(t, repo.SaveCompleted(ctx, session))
	return session
}

func TestSessionRepositoryCreateActive(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a second active session for the same user", func(t *testing.T) {
		repo := NewSessionRepository()

		require.NoError(t, repo.CreateActive(ctx, entities.NewSleepSession("alice", time.Now())))

		err := repo.CreateActive(ctx, entities.NewSleepSession("alice", time.Now()))
		assert.True(t, errors.Is(err, ports.ErrActiveSessionExists))
	})

	t.Run("admits exactly one winner under concurrency", func(t *testing.T) {
		repo := NewSessionRepository()

		const attempts = 32
		var wg sync.WaitGroup
		errs := make(chan error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.CreateActive(ctx, entities.NewSleepSession("alice", time.Now()))
			}()
		}
		wg.Wait()
		close(errs)

		var wins int
		for err := range errs {
			if err == nil {
				wins++
			} else {
				require.True(t, errors.Is(err, ports.ErrActiveSessionExists))
			}
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("completing a session releases the slot", func(t *testing.T) {
		repo := NewSessionRepository()

		completed(t, repo, "alice", time.Now(), 60)
		require.NoError(t, repo.CreateActive(ctx, entities.NewSleepSession("alice", time.Now())))
	})

	t.Run("deleting an active session releases the slot", func(t *testing.T) {
		repo := NewSessionRepository()

		session := entities.NewSleepSession("alice", time.Now())
		require.NoError(t, repo.CreateActive(ctx, session))
		require.NoError(t, repo.Delete(ctx, session.ID))

		require.NoError(t, repo.CreateActive(ctx, entities.NewSleepSession("alice", time.Now())))
	})
}

func TestSessionRepositoryGetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	session := entities.NewSleepSession("alice", time.Now())
	require.NoError(t, repo.CreateActive(ctx, session))

	t.Run("returns a copy, not the stored pointer", func(t *testing.T) {
		got, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)

		got.UserID = "mallory"

		again, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", again.UserID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, ports.ErrSessionNotFound))
	})
}

func TestSessionRepositoryCompletedForUsersBetween(t *testing.T) {
	ctx := context.Background()
	night := time.Date(2026, 8, 3, 22, 0, 0, 0, time.UTC)
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 7, 23, 59, 59, 999999999, time.UTC)

	t.Run("orders by duration descending", func(t *testing.T) {
		repo := NewSessionRepository()

		short := completed(t, repo, "bob", night, 60)
		long := completed(t, repo, "carol", night, 240)
		medium := completed(t, repo, "bob", night.Add(-24*time.Hour), 120)

		got, err := repo.CompletedForUsersBetween(ctx, []string{"bob", "carol"}, start, end, 0)
		require.NoError(t, err)

		require.Len(t, got, 3)
		assert.Equal(t, long.ID, got[0].ID)
		assert.Equal(t, medium.ID, got[1].ID)
		assert.Equal(t, short.ID, got[2].ID)
	})

	t.Run("breaks duration ties by id so paging stays stable", func(t *testing.T) {
		repo := NewSessionRepository()

		a := completed(t, repo, "bob", night, 120)
		b := completed(t, repo, "bob", night.Add(time.Hour), 120)

		first, err := repo.CompletedForUsersBetween(ctx, []string{"bob"}, start, end, 0)
		require.NoError(t, err)
		second, err := repo.CompletedForUsersBetween(ctx, []string{"bob"}, start, end, 0)
		require.NoError(t, err)

		assert.Equal(t, first[0].ID, second[0].ID)
		low, high := a.ID, b.ID
		if low > high {
			low, high = high, low
		}
		assert.Equal(t, low, first[0].ID)
		assert.Equal(t, high, first[1].ID)
	})

	t.Run("applies the limit after ranking", func(t *testing.T) {
		repo := NewSessionRepository()

		for i := 0; i < 5; i++ {
			completed(t, repo, "bob", night.Add(time.Duration(i)*time.Minute), 30+10*i)
		}

		got, err := repo.CompletedForUsersBetween(ctx, []string{"bob"}, start, end, 2)
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, 70, got[0].Duration())
		assert.Equal(t, 60, got[1].Duration())
	})

	t.Run("filters on clock-out falling inside the window", func(t *testing.T) {
		repo := NewSessionRepository()

		// Clock-in before the window but clock-out inside still counts.
		inside := completed(t, repo, "bob", start.Add(-2*time.Hour), 240)
		completed(t, repo, "bob", end.Add(time.Hour), 240)

		got, err := repo.CompletedForUsersBetween(ctx, []string{"bob"}, start, end, 0)
		require.NoError(t, err)

		require.Len(t, got, 1)
		assert.Equal(t, inside.ID, got[0].ID)
	})
}

func TestSessionRepositoryLatestMutationAt(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	before, err := repo.LatestMutationAt(ctx)
	require.NoError(t, err)

	session := entities.NewSleepSession("alice", time.Now())
	require.NoError(t, repo.CreateActive(ctx, session))

	afterCreate, err := repo.LatestMutationAt(ctx)
	require.NoError(t, err)
	assert.True(t, afterCreate.After(before))

	require.NoError(t, session.ClockOut(time.Now()))
	require.NoError(t, repo.SaveCompleted(ctx, session))

	afterSave, err := repo.LatestMutationAt(ctx)
	require.NoError(t, err)
	assert.True(t, afterSave.After(afterCreate))

	require.NoError(t, repo.Delete(ctx, session.ID))

	afterDelete, err := repo.LatestMutationAt(ctx)
	require.NoError(t, err)
	assert.True(t, afterDelete.After(afterSave))
}
