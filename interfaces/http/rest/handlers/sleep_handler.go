package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goodnight/application/services"
	"goodnight/application/validators"
	"goodnight/pkg/auth"
	"goodnight/pkg/common"
)

const (
	defaultFeedLimit    = 20
	defaultFeedLookback = 7 // days
)

// SleepHandler serves the sleep session lifecycle and the followed-users feed
type SleepHandler struct {
	sleepService *services.SleepService
	feedService  *services.FeedService
	logger       *zap.Logger
	debug        bool
}

// NewSleepHandler creates a new sleep handler
func NewSleepHandler(sleepService *services.SleepService, feedService *services.FeedService, logger *zap.Logger, debug bool) *SleepHandler {
	return &SleepHandler{
		sleepService: sleepService,
		feedService:  feedService,
		logger:       logger,
		debug:        debug,
	}
}

// ClockIn handles POST /api/v1/sleeps/clock_in
func (h *SleepHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	session, err := h.sleepService.ClockIn(r.Context(), user.UserID)
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	common.RespondJSON(w, http.StatusCreated, session)
}

// ClockOut handles PATCH /api/v1/sleeps/{sleepID}/clock_out
func (h *SleepHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	sleepID := chi.URLParam(r, "sleepID")

	session, err := h.sleepService.ClockOut(r.Context(), sleepID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	common.RespondJSON(w, http.StatusOK, session)
}

// Following handles GET /api/v1/sleeps/following
func (h *SleepHandler) Following(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	query := feedQueryFromRequest(r)
	page, err := h.feedService.FollowingSleepRecords(r.Context(), user.UserID, query)
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	common.RespondPage(w, http.StatusOK, page.Records, page.Meta)
}

// feedQueryFromRequest applies the feed defaults before validation: page 1,
// limit 20, and a one-week window ending today. Non-numeric page or limit
// parse to zero and fail validation downstream rather than here.
func feedQueryFromRequest(r *http.Request) validators.FeedQuery {
	params := r.URL.Query()

	page := 1
	if raw := params.Get("page"); raw != "" {
		page, _ = strconv.Atoi(raw)
	}

	limit := defaultFeedLimit
	if raw := params.Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	today := time.Now().UTC()
	dateStart := params.Get("date_start")
	if dateStart == "" {
		dateStart = today.AddDate(0, 0, -defaultFeedLookback).Format("2006-01-02")
	}
	dateEnd := params.Get("date_end")
	if dateEnd == "" {
		dateEnd = today.Format("2006-01-02")
	}

	return validators.FeedQuery{
		Page:      page,
		Limit:     limit,
		DateStart: dateStart,
		DateEnd:   dateEnd,
	}
}
