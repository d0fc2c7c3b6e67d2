package events

import "time"

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past. They replace
// the implicit post-save hooks the feed cache used to depend on: the sleep
// lifecycle emits them explicitly after a successful commit, and the feed
// cache invalidation subscribes to them.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetUserID() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	UserID      string    `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetUserID() string       { return e.UserID }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Session Events

// SessionClockedIn is raised when a user starts a sleep session
type SessionClockedIn struct {
	BaseEvent
	SessionID string `json:"session_id"`
}

// NewSessionClockedIn creates a SessionClockedIn event
func NewSessionClockedIn(sessionID, userID string, timestamp time.Time) SessionClockedIn {
	return SessionClockedIn{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "session.clocked_in",
			UserID:      userID,
			Timestamp:   timestamp,
		},
		SessionID: sessionID,
	}
}

// SessionClockedOut is raised when a sleep session is completed
type SessionClockedOut struct {
	BaseEvent
	SessionID       string `json:"session_id"`
	DurationMinutes int    `json:"duration_minutes"`
}

// NewSessionClockedOut creates a SessionClockedOut event
func NewSessionClockedOut(sessionID, userID string, durationMinutes int, timestamp time.Time) SessionClockedOut {
	return SessionClockedOut{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "session.clocked_out",
			UserID:      userID,
			Timestamp:   timestamp,
		},
		SessionID:       sessionID,
		DurationMinutes: durationMinutes,
	}
}

// SessionDeleted is raised when a sleep session is removed, which only
// happens through cascading user deletion upstream
type SessionDeleted struct {
	BaseEvent
	SessionID string `json:"session_id"`
}

// NewSessionDeleted creates a SessionDeleted event
func NewSessionDeleted(sessionID, userID string, timestamp time.Time) SessionDeleted {
	return SessionDeleted{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "session.deleted",
			UserID:      userID,
			Timestamp:   timestamp,
		},
		SessionID: sessionID,
	}
}
