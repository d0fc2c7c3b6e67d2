package entities

import "time"

// DailySleepSummary is one pre-aggregated row per user per date, produced
// by the daily summary job from completed sessions. Unique on (user, date).
type DailySleepSummary struct {
	UserID                    string    `json:"user_id"`
	Date                      string    `json:"date"` // YYYY-MM-DD
	TotalSleepDurationMinutes int       `json:"total_sleep_duration_minutes"`
	NumberOfSleepSessions     int       `json:"number_of_sleep_sessions"`
	UpdatedAt                 time.Time `json:"updated_at"`
}
