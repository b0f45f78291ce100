package middleware

import (
	"net/http"
	"strconv"

	"github.com/ldworks/trainee-management/internal/auth"
	"github.com/ldworks/trainee-management/pkg/logger"
)

// ActorContext enriches the log context with the authenticated caller. Mount
// after the auth middleware so every later log line carries the user.
func ActorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.UserFromContext(r.Context())
		if !ok || actor == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(),
			"userID", strconv.FormatInt(actor.ID, 10),
			"role", actor.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
