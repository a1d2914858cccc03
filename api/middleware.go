package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"safemail/internal/domain"
	"safemail/internal/service"
)

type contextKey string

const userContextKey contextKey = "safemail_user"

// RequireSession authenticates the bearer session id against sessions and
// attaches the resolved user to the request context.
func RequireSession(sessions *service.SessionMachine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				respondError(w, domain.ErrSessionNotFound())
				return
			}
			sessionID, err := uuid.Parse(strings.TrimPrefix(header, prefix))
			if err != nil {
				respondError(w, domain.ErrSessionNotFound())
				return
			}

			user, err := sessions.Authenticate(sessionID)
			if err != nil {
				respondError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerSessionID re-parses the Authorization header's session id, for
// handlers that need the session id itself rather than the resolved user.
func bearerSessionID(r *http.Request) (uuid.UUID, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return uuid.Nil, domain.ErrSessionNotFound()
	}
	return uuid.Parse(strings.TrimPrefix(header, prefix))
}

// authenticatedUser retrieves the user RequireSession attached to ctx.
func authenticatedUser(r *http.Request) domain.User {
	user, ok := r.Context().Value(userContextKey).(domain.User)
	if !ok {
		// RequireSession runs upstream of every handler that calls this;
		// reaching here without it is a routing-table mistake.
		panic("api: authenticatedUser called without RequireSession middleware")
	}
	return user
}
