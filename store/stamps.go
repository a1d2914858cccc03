package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"safemail/internal/config"
	"safemail/internal/domain"
)

// StampTrackerRepository implements domain.OneTimeStampTrackerRepository
// against the onetime_stamp_trackers table.
type StampTrackerRepository struct {
	store *Store
}

// StampTrackers returns the tracker repository bound to this store.
func (s *Store) StampTrackers() StampTrackerRepository { return StampTrackerRepository{store: s} }

func (r StampTrackerRepository) Insert(stampID, recipientID uuid.UUID) error {
	_, err := r.store.db.Exec(`
		INSERT INTO onetime_stamp_trackers (stamp_id, recipient_id, used_or_revoked)
		VALUES (?, ?, 0)`, stampID.String(), recipientID.String())
	if err != nil {
		return domain.ErrDatabase(err)
	}
	return nil
}

func (r StampTrackerRepository) GetByID(stampID uuid.UUID) (*domain.OneTimeStampTracker, error) {
	return getTracker(r.store.db, stampID)
}

func getTracker(q querier, stampID uuid.UUID) (*domain.OneTimeStampTracker, error) {
	row := q.QueryRow(`
		SELECT stamp_id, recipient_id, used_or_revoked
		FROM onetime_stamp_trackers WHERE stamp_id = ?`, stampID.String())

	var t domain.OneTimeStampTracker
	var stampIDStr, recipientIDStr string
	var used int
	if err := row.Scan(&stampIDStr, &recipientIDStr, &used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrDatabase(err)
	}
	var err error
	if t.StampID, err = uuid.Parse(stampIDStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	if t.RecipientID, err = uuid.Parse(recipientIDStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	t.UsedOrRevoked = used == 1
	return &t, nil
}

func (r StampTrackerRepository) SetUsedOrRevoked(stampID uuid.UUID) error {
	_, err := r.store.db.Exec(`UPDATE onetime_stamp_trackers SET used_or_revoked = 1 WHERE stamp_id = ?`, stampID.String())
	if err != nil {
		return domain.ErrDatabase(err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// AdmitOnetimeStamp performs the single-use check, the consumption flag
// flip, and the message insert inside one transaction, so a stamp can
// never be consumed twice under concurrent admission. A stamp found
// already used_or_revoked aborts the transaction and returns
// domain.ErrInvalidStamp without writing a message.
func (s *Store) AdmitOnetimeStamp(stampID, recipientID uuid.UUID, metadata, content string) (domain.Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return domain.Message{}, domain.ErrDatabase(err)
	}
	defer tx.Rollback()

	tracker, err := getTracker(tx, stampID)
	if err != nil {
		return domain.Message{}, err
	}
	if tracker == nil || tracker.RecipientID != recipientID {
		return domain.Message{}, domain.ErrInvalidStamp()
	}
	if tracker.UsedOrRevoked {
		return domain.Message{}, domain.ErrInvalidStamp()
	}

	res, err := tx.Exec(`
		UPDATE onetime_stamp_trackers SET used_or_revoked = 1
		WHERE stamp_id = ? AND used_or_revoked = 0`, stampID.String())
	if err != nil {
		return domain.Message{}, domain.ErrDatabase(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Message{}, domain.ErrDatabase(err)
	}
	if n == 0 {
		// Lost a race against a concurrent consumption of the same stamp.
		return domain.Message{}, domain.ErrInvalidStamp()
	}

	msg, err := createMessage(tx, recipientID, metadata, content)
	if err != nil {
		return domain.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Message{}, domain.ErrDatabase(err)
	}
	return msg, nil
}

// StampRequestRepository implements domain.StampRequestRepository against
// the onetime_stamp_requests table.
type StampRequestRepository struct {
	store *Store
}

// StampRequests returns the stamp-request repository bound to this store.
func (s *Store) StampRequests() StampRequestRepository { return StampRequestRepository{store: s} }

func (r StampRequestRepository) CreateStampRequest(difficulty uint64, recipientID uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	validTo := time.Now().UTC().Add(config.StampRequestWindow())
	_, err := r.store.db.Exec(`
		INSERT INTO onetime_stamp_requests (stamp_request_id, recipient_id, difficulty, valid_to)
		VALUES (?, ?, ?, ?)`,
		id.String(), recipientID.String(), int64(difficulty), validTo.Format(time.RFC3339Nano),
	)
	if err != nil {
		return uuid.Nil, domain.ErrDatabase(err)
	}
	return id, nil
}

func (r StampRequestRepository) GetStampRequest(stampRequestID uuid.UUID) (*domain.OneTimeStampRequest, error) {
	row := r.store.db.QueryRow(`
		SELECT stamp_request_id, recipient_id, difficulty, valid_to, solved_at
		FROM onetime_stamp_requests WHERE stamp_request_id = ?`, stampRequestID.String())

	var req domain.OneTimeStampRequest
	var reqIDStr, recipientIDStr, validToStr string
	var difficulty int64
	var solvedAtStr sql.NullString
	if err := row.Scan(&reqIDStr, &recipientIDStr, &difficulty, &validToStr, &solvedAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrDatabase(err)
	}
	var err error
	if req.StampRequestID, err = uuid.Parse(reqIDStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	if req.RecipientID, err = uuid.Parse(recipientIDStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	if req.ValidTo, err = time.Parse(time.RFC3339Nano, validToStr); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	req.Difficulty = uint64(difficulty)
	if solvedAtStr.Valid {
		t, err := time.Parse(time.RFC3339Nano, solvedAtStr.String)
		if err != nil {
			return nil, domain.ErrDatabase(err)
		}
		req.SolvedAt = &t
	}
	return &req, nil
}

// MarkSolved records that a stamp request's proof of work was accepted.
// The WHERE clause requires solved_at still be NULL, so a request cannot
// be marked solved twice.
func (r StampRequestRepository) MarkSolved(stampRequestID uuid.UUID) error {
	res, err := r.store.db.Exec(`
		UPDATE onetime_stamp_requests SET solved_at = ?
		WHERE stamp_request_id = ? AND solved_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), stampRequestID.String(),
	)
	if err != nil {
		return domain.ErrDatabase(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDatabase(err)
	}
	if n == 0 {
		return domain.ErrStampRequestExpired()
	}
	return nil
}
