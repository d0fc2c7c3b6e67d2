package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/infrastructure/config"
	"goodnight/pkg/auth"
	"goodnight/pkg/common"
)

// Authenticate resolves the acting user before any core logic runs. The
// primary mechanism is the X-User-Id header; when a JWT secret is
// configured, a Bearer token whose subject is the user id works too. An
// absent or unresolvable identity is Unauthorized, full stop.
func Authenticate(users ports.UserRepository, cfg *config.Config, logger *zap.Logger) func(next http.Handler) http.Handler {
	var validator *auth.JWTValidator
	if cfg.JWTSecret != "" {
		v, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
		})
		if err != nil {
			logger.Error("failed to build JWT validator", zap.Error(err))
		} else {
			validator = v
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := resolveUserID(r, validator)
			if userID == "" {
				common.RespondError(w, http.StatusUnauthorized, "X-User-Id header is required")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Error("failed to resolve acting user", zap.Error(err))
				common.RespondError(w, http.StatusInternalServerError, "something went wrong")
				return
			}
			if user == nil {
				common.RespondError(w, http.StatusUnauthorized, "user not found")
				return
			}

			ctx := auth.WithUser(r.Context(), &auth.UserContext{
				UserID: user.ID,
				Name:   user.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUserID(r *http.Request, validator *auth.JWTValidator) string {
	if validator != nil {
		header := r.Header.Get("Authorization")
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if subject, err := validator.ValidateToken(parts[1]); err == nil {
				return subject
			}
			return ""
		}
	}

	return r.Header.Get("X-User-Id")
}
