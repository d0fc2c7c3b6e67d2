package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/domain/entities"
	apperrors "goodnight/pkg/errors"
)

// SummaryService aggregates completed sessions into one daily summary row
// per user per date. It reads persisted session state only and never
// touches the feed cache.
type SummaryService struct {
	sessions  ports.SessionRepository
	summaries ports.SummaryRepository
	logger    *zap.Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(
	sessions ports.SessionRepository,
	summaries ports.SummaryRepository,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		sessions:  sessions,
		summaries: summaries,
		logger:    logger,
	}
}

// Run summarizes the given date (YYYY-MM-DD): every completed session whose
// clock-out falls inside that day is rolled into its owner's row. Returns
// the number of users summarized.
func (s *SummaryService) Run(ctx context.Context, date string) (int, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, apperrors.NewInvalidError("date must be a valid date in YYYY-MM-DD format")
	}

	start := day
	end := day.Add(24*time.Hour - time.Nanosecond)

	sessions, err := s.sessions.CompletedBetween(ctx, start, end)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to load completed sessions")
	}

	type rollup struct {
		total int
		count int
	}
	byUser := make(map[string]*rollup)
	for _, session := range sessions {
		r := byUser[session.UserID]
		if r == nil {
			r = &rollup{}
			byUser[session.UserID] = r
		}
		r.total += session.Duration()
		r.count++
	}

	now := time.Now()
	for userID, r := range byUser {
		summary := &entities.DailySleepSummary{
			UserID:                    userID,
			Date:                      date,
			TotalSleepDurationMinutes: r.total,
			NumberOfSleepSessions:     r.count,
			UpdatedAt:                 now,
		}
		if err := s.summaries.Upsert(ctx, summary); err != nil {
			return 0, apperrors.Wrapf(err, "failed to upsert summary for user %s", userID)
		}
	}

	s.logger.Info("daily summary complete",
		zap.String("date", date),
		zap.Int("users", len(byUser)),
		zap.Int("sessions", len(sessions)),
	)

	return len(byUser), nil
}
