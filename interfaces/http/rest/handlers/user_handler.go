package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goodnight/domain/entities"
	"goodnight/pkg/common"
	"goodnight/pkg/utils"
)

// UserStore installs users directly. Only the in-memory driver exposes
// this; user records otherwise arrive through an external system.
type UserStore interface {
	Put(user *entities.User)
}

// CreateUserRequest is the body for seeding a user locally
type CreateUserRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UserHandler serves local user provisioning. The route is only mounted
// for the in-memory driver, so production deployments never expose it.
type UserHandler struct {
	store  UserStore
	logger *zap.Logger
	debug  bool
}

// NewUserHandler creates a new user handler
func NewUserHandler(store UserStore, logger *zap.Logger, debug bool) *UserHandler {
	return &UserHandler{
		store:  store,
		logger: logger,
		debug:  debug,
	}
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err, h.debug)
		return
	}

	user := &entities.User{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
	h.store.Put(user)

	common.RespondJSON(w, http.StatusCreated, user)
}
