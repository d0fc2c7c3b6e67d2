package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"goodnight/application/ports"
	"goodnight/domain/entities"
)

// SessionRepository is a mutex-guarded in-memory session store used by
// tests and local development. It enforces the same constraints the
// DynamoDB implementation does, in particular the atomic one-active-session
// rule: the check and the insert happen under one lock, so concurrent
// clock-ins for a user serialize and exactly one wins.
type SessionRepository struct {
	mu           sync.RWMutex
	sessions     map[string]*entities.SleepSession
	activeByUser map[string]string
	latest       time.Time
}

// NewSessionRepository creates an in-memory session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions:     make(map[string]*entities.SleepSession),
		activeByUser: make(map[string]string),
	}
}

// CreateActive implements ports.SessionRepository
func (r *SessionRepository) CreateActive(ctx context.Context, session *entities.SleepSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.activeByUser[session.UserID]; exists {
		return ports.ErrActiveSessionExists
	}

	r.sessions[session.ID] = cloneSession(session)
	r.activeByUser[session.UserID] = session.ID
	r.bumpLatest(session.UpdatedAt)
	return nil
}

// GetByID implements ports.SessionRepository
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.SleepSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

// SaveCompleted implements ports.SessionRepository
func (r *SessionRepository) SaveCompleted(ctx context.Context, session *entities.SleepSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return ports.ErrSessionNotFound
	}

	r.sessions[session.ID] = cloneSession(session)
	if session.IsCompleted() && r.activeByUser[session.UserID] == session.ID {
		delete(r.activeByUser, session.UserID)
	}
	r.bumpLatest(session.UpdatedAt)
	return nil
}

// Delete implements ports.SessionRepository
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return ports.ErrSessionNotFound
	}

	delete(r.sessions, id)
	if r.activeByUser[session.UserID] == id {
		delete(r.activeByUser, session.UserID)
	}
	r.bumpLatest(time.Now())
	return nil
}

// FindByIDs implements ports.SessionRepository. Result order follows map
// iteration, deliberately unordered.
func (r *SessionRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.SleepSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var result []*entities.SleepSession
	for id, session := range r.sessions {
		if want[id] {
			result = append(result, cloneSession(session))
		}
	}
	return result, nil
}

// CompletedForUsersBetween implements ports.SessionRepository
func (r *SessionRepository) CompletedForUsersBetween(ctx context.Context, userIDs []string, start, end time.Time, limit int) ([]*entities.SleepSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		owners[id] = true
	}

	var matched []*entities.SleepSession
	for _, session := range r.sessions {
		if !owners[session.UserID] || !session.IsCompleted() {
			continue
		}
		if session.ClockOutTime.Before(start) || session.ClockOutTime.After(end) {
			continue
		}
		matched = append(matched, cloneSession(session))
	}

	// Duration descending; id ascending breaks ties so the ranking never
	// shifts between requests.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Duration() != matched[j].Duration() {
			return matched[i].Duration() > matched[j].Duration()
		}
		return matched[i].ID < matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// CompletedBetween implements ports.SessionRepository
func (r *SessionRepository) CompletedBetween(ctx context.Context, start, end time.Time) ([]*entities.SleepSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entities.SleepSession
	for _, session := range r.sessions {
		if !session.IsCompleted() {
			continue
		}
		if session.ClockOutTime.Before(start) || session.ClockOutTime.After(end) {
			continue
		}
		matched = append(matched, cloneSession(session))
	}
	return matched, nil
}

// LatestMutationAt implements ports.SessionRepository
func (r *SessionRepository) LatestMutationAt(ctx context.Context) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, nil
}

func (r *SessionRepository) bumpLatest(t time.Time) {
	if t.After(r.latest) {
		r.latest = t
	} else {
		// Same-instant writes still have to move the timestamp, or tier-2
		// cache keys would not change.
		r.latest = r.latest.Add(time.Nanosecond)
	}
}

func cloneSession(s *entities.SleepSession) *entities.SleepSession {
	clone := *s
	if s.ClockOutTime != nil {
		t := *s.ClockOutTime
		clone.ClockOutTime = &t
	}
	if s.DurationMinutes != nil {
		d := *s.DurationMinutes
		clone.DurationMinutes = &d
	}
	return &clone
}
