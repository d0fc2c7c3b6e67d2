package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goodnight/application/services"
	"goodnight/pkg/auth"
	"goodnight/pkg/common"
)

// FollowRequest is the body for creating a follow edge
type FollowRequest struct {
	UserID string `json:"user_id"`
}

// FollowHandler serves the follow graph endpoints
type FollowHandler struct {
	followService *services.FollowService
	logger        *zap.Logger
	debug         bool
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(followService *services.FollowService, logger *zap.Logger, debug bool) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		logger:        logger,
		debug:         debug,
	}
}

// Follow handles POST /api/v1/follows
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	var req FollowRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	edge, err := h.followService.Follow(r.Context(), user.UserID, req.UserID)
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	common.RespondJSON(w, http.StatusCreated, edge)
}

// Unfollow handles DELETE /api/v1/follows/{userID}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	targetID := chi.URLParam(r, "userID")

	if err := h.followService.Unfollow(r.Context(), user.UserID, targetID); err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "successfully unfollowed user",
	})
}
