package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"safemail/internal/domain"
	"safemail/internal/models"
	"safemail/internal/service"
)

// RegisterHandler implements POST /user/register.
func RegisterHandler(users *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user, err := users.Register(req.Username, req.PublicEncryptionKey, req.PublicVerifyKey)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, models.NewUserResponse(user))
	}
}

// GetUserHandler implements GET /user/:username.
func GetUserHandler(users *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		user, err := users.GetByUsername(username)
		if err != nil {
			respondError(w, err)
			return
		}
		if user == nil {
			respondError(w, domain.ErrUserNotFound())
			return
		}
		respondJSON(w, http.StatusOK, models.NewUserResponse(*user))
	}
}

// WhoAmIHandler implements POST /user/whoami: returns the user
// RequireSession already resolved from the bearer session.
func WhoAmIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, models.NewUserResponse(authenticatedUser(r)))
	}
}

// LoginHandler implements POST /user/login.
func LoginHandler(sessions *service.SessionMachine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RequestSessionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		session, err := sessions.RequestSession(req.Username)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, models.NewSessionResponse(session))
	}
}

// LoginConfirmHandler implements POST /user/login/confirm. The session id travels in the request body here,
// not as a bearer header — the session isn't active yet.
func LoginConfirmHandler(sessions *service.SessionMachine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID          uuid.UUID `json:"session_id" validate:"required"`
			ChallengeSignature string    `json:"challenge_signature" validate:"required,base64"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := sessions.ActivateSession(req.SessionID, req.ChallengeSignature); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, nil)
	}
}

// LogoutHandler implements POST /user/logout.
func LogoutHandler(sessions *service.SessionMachine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := bearerSessionID(r)
		if err != nil {
			respondError(w, domain.ErrSessionNotFound())
			return
		}
		if err := sessions.Logout(sessionID); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, nil)
	}
}
