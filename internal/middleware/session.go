package middleware

import (
	"log/slog"
	"net/http"

	"github.com/dandi/dandi/internal/auth"
	"github.com/dandi/dandi/internal/identity"
	"github.com/dandi/dandi/internal/model"
	"github.com/gorilla/sessions"
)

// RequireSession rejects requests without a signed-in session cookie and
// stores the session on the request context.
func RequireSession(store sessions.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := identity.SessionEmail(store, r)
			if email == "" {
				logger.Warn("session required",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
				)
				writeJSONError(w, http.StatusUnauthorized, CodeUnauthorized, MsgUnauthorized)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), &model.Session{Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
