package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/domain/entities"
	"goodnight/domain/events"
	apperrors "goodnight/pkg/errors"
)

// SleepService owns the sleep session lifecycle: clock-in creates an active
// session, clock-out completes it exactly once. The one-active-session
// invariant is enforced by the store's atomic constraint, not here; this
// service only translates the store's rejection into a Conflict outcome.
type SleepService struct {
	sessions  ports.SessionRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSleepService creates a new sleep service
func NewSleepService(
	sessions ports.SessionRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *SleepService {
	return &SleepService{
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the service clock, for tests
func (s *SleepService) WithClock(now func() time.Time) *SleepService {
	s.now = now
	return s
}

// ClockIn starts a new sleep session for the user. Concurrent clock-ins for
// one user race on the store's uniqueness constraint; the loser surfaces as
// a Conflict and creates nothing.
func (s *SleepService) ClockIn(ctx context.Context, userID string) (*entities.SleepSession, error) {
	session := entities.NewSleepSession(userID, s.now())

	if err := s.sessions.CreateActive(ctx, session); err != nil {
		if errors.Is(err, ports.ErrActiveSessionExists) {
			return nil, apperrors.NewConflictError("user must clock out before clocking in again")
		}
		return nil, apperrors.Wrap(err, "failed to create sleep session")
	}

	s.logger.Info("session clocked in",
		zap.String("sessionID", session.ID),
		zap.String("userID", userID),
	)

	s.publish(ctx, events.NewSessionClockedIn(session.ID, userID, session.ClockInTime))

	return session, nil
}

// ClockOut completes a session. Checks run in a fixed order and the first
// failure wins: session exists, acting user owns it, clock-in is present,
// clock-out is not already set.
func (s *SleepService) ClockOut(ctx context.Context, sessionID, actingUserID string) (*entities.SleepSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, apperrors.NewNotFoundError("sleep record not found")
		}
		return nil, apperrors.Wrap(err, "failed to load sleep session")
	}

	if session.UserID != actingUserID {
		return nil, apperrors.NewInvalidError("invalid sleep record")
	}

	if err := session.ClockOut(s.now()); err != nil {
		return nil, err
	}

	if err := s.sessions.SaveCompleted(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, "failed to save sleep session")
	}

	s.logger.Info("session clocked out",
		zap.String("sessionID", session.ID),
		zap.String("userID", session.UserID),
		zap.Int("durationMinutes", session.Duration()),
	)

	s.publish(ctx, events.NewSessionClockedOut(session.ID, session.UserID, session.Duration(), *session.ClockOutTime))

	return session, nil
}

// DeleteSession removes a session. Only cascading user deletion upstream
// takes this path, but it still has to fan out the same mutation event the
// feed cache invalidation listens for.
func (s *SleepService) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return apperrors.NewNotFoundError("sleep record not found")
		}
		return apperrors.Wrap(err, "failed to load sleep session")
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperrors.Wrap(err, "failed to delete sleep session")
	}

	s.publish(ctx, events.NewSessionDeleted(session.ID, session.UserID, s.now()))

	return nil
}

// publish emits a domain event after a successful commit. Event delivery is
// best effort: the write already happened, so a publish failure is logged
// and the request still succeeds.
func (s *SleepService) publish(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish domain event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}
