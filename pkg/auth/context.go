package auth

import (
	"context"

	apperrors "goodnight/pkg/errors"
)

type contextKey string

const userContextKey contextKey = "user"

// UserContext carries the resolved acting user for a request
type UserContext struct {
	UserID string
	Name   string
}

// WithUser stores the resolved user on the request context
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext retrieves the resolved user from the request context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, apperrors.NewUnauthorizedError("user identity not resolved")
	}
	return user, nil
}
