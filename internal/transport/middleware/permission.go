package middleware

import (
	"net/http"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/auth"
	"github.com/frahmantamala/practice-management/internal/role"
	"github.com/frahmantamala/practice-management/internal/transport"
	"github.com/frahmantamala/practice-management/pkg/logger"
)

// RequireModule lets the request through when the authenticated user's
// effective level on module covers level. It must run after AuthMiddleware.
func RequireModule(module role.Module, level role.Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				transport.WriteAppError(w, internal.NewUnauthorizedError("Authentication required", internal.ErrCodeInvalidToken), "")
				return
			}

			if !user.Can(module, level) {
				logger.From(r.Context()).Warn("access denied: insufficient module level",
					"user_id", user.ID,
					"module", module,
					"required_level", level,
					"effective_level", user.Permissions[module])
				transport.WriteAppError(w, internal.ErrInsufficientPerms, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
