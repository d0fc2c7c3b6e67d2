package validators

import (
	"regexp"
	"time"

	apperrors "goodnight/pkg/errors"
)

const dateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FeedQuery holds the feed read parameters after the handler has applied
// defaults (page 1, limit 20, date_start a week back, date_end today).
// Defaults are the caller's job; the validator only judges what it is given.
type FeedQuery struct {
	Page      int
	Limit     int
	DateStart string
	DateEnd   string
}

// Validate checks the query in a fixed order, collecting every message.
// Cross-field range checks are skipped entirely when any earlier check
// failed, so a bad date format never cascades into a nonsensical range
// error. Returns an Invalid error carrying all messages, or nil.
func (q FeedQuery) Validate() error {
	var messages []string

	if q.Page <= 0 {
		messages = append(messages, "page must be greater than 0")
	}
	if q.Limit <= 0 {
		messages = append(messages, "limit must be greater than 0")
	} else if q.Limit > 100 {
		messages = append(messages, "limit must be less than or equal to 100")
	}

	messages = append(messages, validateDate("date_start", q.DateStart)...)
	messages = append(messages, validateDate("date_end", q.DateEnd)...)

	if len(messages) > 0 {
		return apperrors.NewInvalidError(messages...)
	}

	start, _ := time.Parse(dateLayout, q.DateStart)
	end, _ := time.Parse(dateLayout, q.DateEnd)

	if start.After(end) {
		messages = append(messages, "date_start must be before or equal to date_end")
	}
	// A range of exactly 3 calendar months is still valid.
	if end.After(start.AddDate(0, 3, 0)) {
		messages = append(messages, "date range cannot exceed 3 months")
	}

	if len(messages) > 0 {
		return apperrors.NewInvalidError(messages...)
	}
	return nil
}

// Window returns the validated query's date window expanded to whole days:
// start of day for date_start through end of day for date_end. Validate
// must have passed first.
func (q FeedQuery) Window() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, q.DateStart)
	end, _ := time.Parse(dateLayout, q.DateEnd)

	endOfDay := end.Add(24*time.Hour - time.Nanosecond)
	return start, endOfDay
}

func validateDate(field, value string) []string {
	if !datePattern.MatchString(value) {
		return []string{field + " must be in YYYY-MM-DD format"}
	}
	// Pattern-valid strings can still name impossible dates (Feb 30);
	// time.Parse rejects those.
	if _, err := time.Parse(dateLayout, value); err != nil {
		return []string{field + " must be a valid date in YYYY-MM-DD format"}
	}
	return nil
}
