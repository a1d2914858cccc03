package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session tracks a login attempt through REQUESTED -> ACTIVE -> (EXPIRED |
// LOGGED_OUT).
type Session struct {
	SessionID       uuid.UUID  `json:"session_id"`
	UserID          uuid.UUID  `json:"user_id"`
	Active          bool       `json:"active"`
	ChallengeString string     `json:"challenge_string"`
	RequestedAt     time.Time  `json:"requested_at"`
	ActivatedAt     *time.Time `json:"activated_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
}

// SessionRepository persists sessions and enforces the state machine's
// transition guards at the data layer (the expiry race guard on activation,
// the active+unexpired predicate on lookup).
type SessionRepository interface {
	RequestSession(userID uuid.UUID) (Session, error)
	ActivateSession(sessionID uuid.UUID) error
	GetSession(sessionID uuid.UUID, includeInactive bool) (*Session, error)
	LogoutSession(sessionID uuid.UUID) error
}
