// Package service implements SafeMail's three core subsystems — the
// session authentication state machine, the stamp protocol engine, and the
// message admission pipeline — as command handlers over the repository and
// cryptography capability bundles declared in internal/domain.
package service

import (
	"time"

	"github.com/google/uuid"

	"safemail/internal/domain"
	"safemail/internal/logging"
	"safemail/internal/metrics"
	"safemail/internal/utils"
)

// SignatureVerifier is the subset of the cryptography adapter the session
// machine needs.
type SignatureVerifier interface {
	ValidateSignature(plaintext, sigB64, pubB64 string) bool
}

// SessionMachine drives a session through request, activate, and logout.
type SessionMachine struct {
	Users    domain.UserRepository
	Sessions domain.SessionRepository
	Crypto   SignatureVerifier
}

// NewSessionMachine constructs the session state machine.
func NewSessionMachine(users domain.UserRepository, sessions domain.SessionRepository, crypto SignatureVerifier) *SessionMachine {
	return &SessionMachine{Users: users, Sessions: sessions, Crypto: crypto}
}

// RequestSession resolves username to a user and persists a fresh
// REQUESTED session.
func (m *SessionMachine) RequestSession(username string) (domain.Session, error) {
	user, err := m.Users.FindByUsername(username)
	if err != nil {
		return domain.Session{}, err
	}
	if user == nil {
		return domain.Session{}, domain.ErrInvalidCredentials()
	}

	session, err := m.Sessions.RequestSession(user.ID)
	if err != nil {
		return domain.Session{}, err
	}
	logging.InfoLog("session requested [%s] user=[%s]", utils.HashID(session.SessionID), utils.HashID(user.ID))
	return session, nil
}

// ActivateSession verifies the challenge signature and flips a REQUESTED
// session to ACTIVE.
func (m *SessionMachine) ActivateSession(sessionID uuid.UUID, challengeSignature string) error {
	session, err := m.Sessions.GetSession(sessionID, true)
	if err != nil {
		return err
	}
	if session == nil || !time.Now().Before(session.ExpiresAt) {
		return domain.ErrSessionNotFound()
	}

	user, err := m.Users.FindByID(session.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		// A session is never issued against a nonexistent user; this is an
		// internal invariant violation, not a caller error.
		panic("session machine: session references a nonexistent user")
	}

	if !m.Crypto.ValidateSignature(session.ChallengeString, challengeSignature, user.PublicVerifyKey) {
		return domain.ErrInvalidSignature()
	}

	if err := m.Sessions.ActivateSession(sessionID); err != nil {
		return err
	}
	metrics.SessionsActivated.Inc()
	logging.InfoLog("session activated [%s]", utils.HashID(sessionID))
	return nil
}

// Authenticate resolves a bearer session id to its owning user, used by
// every privileged endpoint.
func (m *SessionMachine) Authenticate(sessionID uuid.UUID) (domain.User, error) {
	session, err := m.Sessions.GetSession(sessionID, false)
	if err != nil {
		return domain.User{}, err
	}
	if session == nil {
		return domain.User{}, domain.ErrSessionNotFound()
	}

	user, err := m.Users.FindByID(session.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		panic("session machine: active session references a nonexistent user")
	}
	return *user, nil
}

// Logout deactivates a session, transitioning it to the terminal
// LOGGED_OUT state.
func (m *SessionMachine) Logout(sessionID uuid.UUID) error {
	return m.Sessions.LogoutSession(sessionID)
}
