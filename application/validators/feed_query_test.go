package validators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "goodnight/pkg/errors"
)

func validQuery() FeedQuery {
	return FeedQuery{
		Page:      1,
		Limit:     20,
		DateStart: "2026-08-01",
		DateEnd:   "2026-08-07",
	}
}

func messagesOf(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	require.True(t, apperrors.IsInvalid(err))
	return appErr.Messages
}

func TestFeedQueryValidate(t *testing.T) {
	t.Run("valid query passes", func(t *testing.T) {
		require.NoError(t, validQuery().Validate())
	})

	t.Run("zero page", func(t *testing.T) {
		q := validQuery()
		q.Page = 0
		assert.Equal(t, []string{"page must be greater than 0"}, messagesOf(t, q.Validate()))
	})

	t.Run("negative limit", func(t *testing.T) {
		q := validQuery()
		q.Limit = -1
		assert.Equal(t, []string{"limit must be greater than 0"}, messagesOf(t, q.Validate()))
	})

	t.Run("limit over 100", func(t *testing.T) {
		q := validQuery()
		q.Limit = 101
		assert.Equal(t, []string{"limit must be less than or equal to 100"}, messagesOf(t, q.Validate()))
	})

	t.Run("limit of exactly 100 passes", func(t *testing.T) {
		q := validQuery()
		q.Limit = 100
		require.NoError(t, q.Validate())
	})

	t.Run("malformed date", func(t *testing.T) {
		q := validQuery()
		q.DateStart = "08/01/2026"
		assert.Equal(t, []string{"date_start must be in YYYY-MM-DD format"}, messagesOf(t, q.Validate()))
	})

	t.Run("impossible date passes the pattern but not the calendar", func(t *testing.T) {
		q := validQuery()
		q.DateEnd = "2026-02-30"
		assert.Equal(t, []string{"date_end must be a valid date in YYYY-MM-DD format"}, messagesOf(t, q.Validate()))
	})

	t.Run("messages accumulate in declaration order", func(t *testing.T) {
		q := FeedQuery{Page: 0, Limit: 0, DateStart: "nope", DateEnd: "2026-13-01"}
		assert.Equal(t, []string{
			"page must be greater than 0",
			"limit must be greater than 0",
			"date_start must be in YYYY-MM-DD format",
			"date_end must be a valid date in YYYY-MM-DD format",
		}, messagesOf(t, q.Validate()))
	})

	t.Run("range checks are skipped when an earlier check failed", func(t *testing.T) {
		q := validQuery()
		q.Page = 0
		q.DateStart = "2026-08-07"
		q.DateEnd = "2026-01-01"
		assert.Equal(t, []string{"page must be greater than 0"}, messagesOf(t, q.Validate()))
	})

	t.Run("start after end", func(t *testing.T) {
		q := validQuery()
		q.DateStart = "2026-08-08"
		q.DateEnd = "2026-08-07"
		assert.Equal(t, []string{"date_start must be before or equal to date_end"}, messagesOf(t, q.Validate()))
	})

	t.Run("exactly three calendar months is valid", func(t *testing.T) {
		q := validQuery()
		q.DateStart = "2026-05-07"
		q.DateEnd = "2026-08-07"
		require.NoError(t, q.Validate())
	})

	t.Run("one day past three months fails", func(t *testing.T) {
		q := validQuery()
		q.DateStart = "2026-05-07"
		q.DateEnd = "2026-08-08"
		assert.Equal(t, []string{"date range cannot exceed 3 months"}, messagesOf(t, q.Validate()))
	})

	t.Run("single day window is valid", func(t *testing.T) {
		q := validQuery()
		q.DateStart = "2026-08-07"
		q.DateEnd = "2026-08-07"
		require.NoError(t, q.Validate())
	})
}

func TestFeedQueryWindow(t *testing.T) {
	q := validQuery()
	start, end := q.Window()

	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 7, 23, 59, 59, 999999999, time.UTC), end)
}
