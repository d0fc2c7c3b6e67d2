package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "goodnight/pkg/errors"
)

func TestNewSleepSession(t *testing.T) {
	now := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)
	session := NewSleepSession("user-1", now)

	require.NotEmpty(t, session.ID)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, now, session.ClockInTime)
	assert.True(t, session.IsActive())
	assert.False(t, session.IsCompleted())
	assert.Nil(t, session.DurationMinutes)
}

func TestSleepSessionClockOut(t *testing.T) {
	clockIn := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)

	t.Run("duration truncates to whole minutes", func(t *testing.T) {
		session := NewSleepSession("user-1", clockIn)
		require.NoError(t, session.ClockOut(clockIn.Add(119*time.Second)))

		assert.True(t, session.IsCompleted())
		require.NotNil(t, session.DurationMinutes)
		assert.Equal(t, 1, *session.DurationMinutes)
	})

	t.Run("eight hours", func(t *testing.T) {
		session := NewSleepSession("user-1", clockIn)
		require.NoError(t, session.ClockOut(clockIn.Add(8*time.Hour)))

		assert.Equal(t, 480, session.Duration())
	})

	t.Run("sub-minute sleep is zero minutes", func(t *testing.T) {
		session := NewSleepSession("user-1", clockIn)
		require.NoError(t, session.ClockOut(clockIn.Add(59*time.Second)))

		assert.Equal(t, 0, session.Duration())
	})

	t.Run("missing clock-in", func(t *testing.T) {
		session := &SleepSession{ID: "s-1", UserID: "user-1"}
		err := session.ClockOut(clockIn)

		require.True(t, apperrors.IsInvalid(err))
		assert.Equal(t, []string{"clock_in_time must be present"}, apperrors.GetAppError(err).Messages)
	})

	t.Run("second clock-out is rejected", func(t *testing.T) {
		session := NewSleepSession("user-1", clockIn)
		require.NoError(t, session.ClockOut(clockIn.Add(time.Hour)))

		err := session.ClockOut(clockIn.Add(2 * time.Hour))
		require.True(t, apperrors.IsInvalid(err))
		assert.Equal(t, []string{"clock_out_time is already set"}, apperrors.GetAppError(err).Messages)
		assert.Equal(t, 60, session.Duration())
	})
}
