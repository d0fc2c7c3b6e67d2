package entities

import (
	"time"

	"github.com/google/uuid"

	apperrors "goodnight/pkg/errors"
)

// SleepSession is one sleep record: created by clock-in, completed exactly
// once by clock-out. A session with no ClockOutTime is "active"; the store
// guarantees at most one active session per user at any instant.
type SleepSession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ClockInTime     time.Time  `json:"clock_in_time"`
	ClockOutTime    *time.Time `json:"clock_out_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewSleepSession starts a new active session for a user
func NewSleepSession(userID string, now time.Time) *SleepSession {
	return &SleepSession{
		ID:          uuid.New().String(),
		UserID:      userID,
		ClockInTime: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsActive reports whether the session has not been clocked out yet
func (s *SleepSession) IsActive() bool {
	return s.ClockOutTime == nil
}

// IsCompleted reports whether the session has been clocked out
func (s *SleepSession) IsCompleted() bool {
	return s.ClockOutTime != nil
}

// ClockOut completes the session at the given instant. Completion is
// terminal: a completed session is never clocked out again. Duration is
// whole minutes between clock-in and clock-out, truncated, never rounded.
func (s *SleepSession) ClockOut(now time.Time) error {
	if s.ClockInTime.IsZero() {
		return apperrors.NewInvalidError("clock_in_time must be present")
	}
	if s.ClockOutTime != nil {
		return apperrors.NewInvalidError("clock_out_time is already set")
	}

	duration := int(now.Sub(s.ClockInTime).Seconds()) / 60

	s.ClockOutTime = &now
	s.DurationMinutes = &duration
	s.UpdatedAt = now
	return nil
}

// Duration returns the recorded duration, or 0 for an active session
func (s *SleepSession) Duration() int {
	if s.DurationMinutes == nil {
		return 0
	}
	return *s.DurationMinutes
}
