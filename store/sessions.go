package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"safemail/internal/challenge"
	"safemail/internal/config"
	"safemail/internal/domain"
)

// SessionRepository implements domain.SessionRepository against the
// sessions table.
type SessionRepository struct {
	store *Store
}

// Sessions returns the session repository bound to this store.
func (s *Store) Sessions() SessionRepository { return SessionRepository{store: s} }

// RequestSession creates a fresh REQUESTED session for userID, fixed to a
// two-hour lifetime regardless of whether it is ever activated.
func (r SessionRepository) RequestSession(userID uuid.UUID) (domain.Session, error) {
	challengeStr, err := challenge.Generate()
	if err != nil {
		return domain.Session{}, domain.ErrDatabase(err)
	}

	now := time.Now().UTC()
	session := domain.Session{
		SessionID:       uuid.New(),
		UserID:          userID,
		Active:          false,
		ChallengeString: challengeStr,
		RequestedAt:     now,
		ExpiresAt:       now.Add(config.SessionTTL),
	}

	_, err = r.store.db.Exec(`
		INSERT INTO sessions (session_id, user_id, active, challenge_string, requested_at, expires_at)
		VALUES (?, ?, 0, ?, ?, ?)`,
		session.SessionID.String(), session.UserID.String(), session.ChallengeString,
		session.RequestedAt.Format(time.RFC3339Nano), session.ExpiresAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.Session{}, domain.ErrDatabase(err)
	}
	return session, nil
}

// ActivateSession flips a REQUESTED session to ACTIVE. The WHERE clause
// re-checks expires_at so a session that expired between being fetched and
// activated cannot be brought to life.
func (r SessionRepository) ActivateSession(sessionID uuid.UUID) error {
	now := time.Now().UTC()
	res, err := r.store.db.Exec(`
		UPDATE sessions
		SET active = 1, activated_at = ?
		WHERE session_id = ? AND logged_out = 0 AND expires_at > ?`,
		now.Format(time.RFC3339Nano), sessionID.String(), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.ErrDatabase(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDatabase(err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound()
	}
	return nil
}

// GetSession fetches a session by id. When includeInactive is false, only
// ACTIVE, unexpired, non-logged-out sessions are returned — the predicate
// every authenticated endpoint relies on.
func (r SessionRepository) GetSession(sessionID uuid.UUID, includeInactive bool) (*domain.Session, error) {
	query := `
		SELECT session_id, user_id, active, challenge_string, requested_at, activated_at, expires_at
		FROM sessions WHERE session_id = ?`
	args := []interface{}{sessionID.String()}
	if !includeInactive {
		query += ` AND active = 1 AND logged_out = 0 AND expires_at > ?`
		args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	}

	row := r.store.db.QueryRow(query, args...)
	var (
		sessionIDStr, userIDStr, challengeStr, requestedAtStr, expiresAtStr string
		active                                                              int
		activatedAtStr                                                     sql.NullString
	)
	if err := row.Scan(&sessionIDStr, &userIDStr, &active, &challengeStr, &requestedAtStr, &activatedAtStr, &expiresAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrDatabase(err)
	}

	session := domain.Session{Active: active == 1, ChallengeString: challengeStr}
	var err error
	if session.SessionID, err = uuid.Parse(sessionIDStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	if session.UserID, err = uuid.Parse(userIDStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	if session.RequestedAt, err = time.Parse(time.RFC3339Nano, requestedAtStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	if session.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAtStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	if activatedAtStr.Valid {
		t, err := time.Parse(time.RFC3339Nano, activatedAtStr.String)
		if err != nil {
			return nil, domain.ErrDatabase(err)
		}
		session.ActivatedAt = &t
	}
	return &session, nil
}

// LogoutSession moves a session to the terminal LOGGED_OUT state.
func (r SessionRepository) LogoutSession(sessionID uuid.UUID) error {
	res, err := r.store.db.Exec(`UPDATE sessions SET logged_out = 1 WHERE session_id = ?`, sessionID.String())
	if err != nil {
		return domain.ErrDatabase(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDatabase(err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound()
	}
	return nil
}
