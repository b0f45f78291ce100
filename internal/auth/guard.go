package auth

import (
	"log/slog"
	"net/http"

	"github.com/ldworks/trainee-management/internal/authz"
)

// Guard wraps route handlers with registry-backed permission checks. Denial is
// always a hard 403; hiding a navigation item is the presentation layer's job,
// enforcement happens here.
type Guard struct {
	logger *slog.Logger
}

func NewGuard(logger *slog.Logger) *Guard {
	return &Guard{logger: logger}
}

func (g *Guard) Check(next http.HandlerFunc, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := UserFromContext(r.Context())
		if !ok || actor == nil {
			g.logger.Warn("authorization check failed: actor not found in context", "action", action)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !authz.CanPerform(actor.Role, action) {
			g.logger.WarnContext(r.Context(), "access denied: action not permitted for role",
				"user_id", actor.ID,
				"role", actor.Role,
				"action", action)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// Require returns chi-compatible middleware enforcing a single action.
func (g *Guard) Require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.Check(next.ServeHTTP, action)
	}
}

// RequireAny passes if the actor's role may perform at least one of the
// actions. Used where different roles reach the same route through different
// permissions, e.g. org-wide vs department-scoped listings.
func (g *Guard) RequireAny(actions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := UserFromContext(r.Context())
			if !ok || actor == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, action := range actions {
				if authz.CanPerform(actor.Role, action) {
					next.ServeHTTP(w, r)
					return
				}
			}

			g.logger.WarnContext(r.Context(), "access denied: no permitted action for role",
				"user_id", actor.ID,
				"role", actor.Role,
				"actions", actions)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}
