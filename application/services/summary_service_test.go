package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goodnight/domain/entities"
	memoryrepo "goodnight/infrastructure/persistence/memory"
	apperrors "goodnight/pkg/errors"
)

func completedAt(t *testing.T, sessions *memoryrepo.SessionRepository, userID string, clockIn time.Time, minutes int) {
	t.Helper()
	ctx := context.Background()

	session := entities.NewSleepSession(userID, clockIn)
	require.NoError(t, sessions.CreateActive(ctx, session))
	require.NoError(t, session.ClockOut(clockIn.Add(time.Duration(minutes)*time.Minute)))
	require.NoError(t, sessions.SaveCompleted(ctx, session))
}

func TestSummaryServiceRun(t *testing.T) {
	ctx := context.Background()

	t.Run("rolls sessions up per user", func(t *testing.T) {
		sessions := memoryrepo.NewSessionRepository()
		summaries := memoryrepo.NewSummaryRepository()
		svc := NewSummaryService(sessions, summaries, zap.NewNop())

		// Two naps for alice and one night for bob, all clocked out on the
		// 30th; bob's second session ends on the 31st and stays out.
		day := time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC)
		completedAt(t, sessions, "alice", day, 300)
		completedAt(t, sessions, "alice", day.Add(10*time.Hour), 45)
		completedAt(t, sessions, "bob", day, 480)
		completedAt(t, sessions, "bob", day.Add(22*time.Hour), 360)

		users, err := svc.Run(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, 2, users)

		alice, err := summaries.GetByUserAndDate(ctx, "alice", "2026-08-30")
		require.NoError(t, err)
		require.NotNil(t, alice)
		assert.Equal(t, 345, alice.TotalSleepDurationMinutes)
		assert.Equal(t, 2, alice.NumberOfSleepSessions)

		bob, err := summaries.GetByUserAndDate(ctx, "bob", "2026-08-30")
		require.NoError(t, err)
		require.NotNil(t, bob)
		assert.Equal(t, 480, bob.TotalSleepDurationMinutes)
		assert.Equal(t, 1, bob.NumberOfSleepSessions)
	})

	t.Run("rerun overwrites instead of double counting", func(t *testing.T) {
		sessions := memoryrepo.NewSessionRepository()
		summaries := memoryrepo.NewSummaryRepository()
		svc := NewSummaryService(sessions, summaries, zap.NewNop())

		day := time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC)
		completedAt(t, sessions, "alice", day, 300)

		_, err := svc.Run(ctx, "2026-08-30")
		require.NoError(t, err)
		_, err = svc.Run(ctx, "2026-08-30")
		require.NoError(t, err)

		summary, err := summaries.GetByUserAndDate(ctx, "alice", "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, 300, summary.TotalSleepDurationMinutes)
		assert.Equal(t, 1, summary.NumberOfSleepSessions)
	})

	t.Run("empty day summarizes nobody", func(t *testing.T) {
		svc := NewSummaryService(memoryrepo.NewSessionRepository(), memoryrepo.NewSummaryRepository(), zap.NewNop())

		users, err := svc.Run(ctx, "2026-08-30")
		require.NoError(t, err)
		assert.Zero(t, users)
	})

	t.Run("bad date is invalid", func(t *testing.T) {
		svc := NewSummaryService(memoryrepo.NewSessionRepository(), memoryrepo.NewSummaryRepository(), zap.NewNop())

		_, err := svc.Run(ctx, "30-08-2026")
		require.True(t, apperrors.IsInvalid(err))
	})
}
