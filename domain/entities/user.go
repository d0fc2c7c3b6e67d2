package entities

import "time"

// User is identity only. Users are created externally; this service reads
// them to resolve actors and hydrate feed rows, and never mutates them.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
