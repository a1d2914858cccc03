package store

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"safemail/internal/domain"
)

// MessageRepository implements domain.MessageRepository against the
// messages table.
type MessageRepository struct {
	store *Store
}

// Messages returns the message repository bound to this store.
func (s *Store) Messages() MessageRepository { return MessageRepository{store: s} }

// CreateMessage inserts an admitted message. Admission itself — stamp
// verification and single-use consumption — happens in internal/service
// before this is called; see Store.AdmitOnetimeStamp for the transactional
// variant used by one-time-stamp sends.
func (r MessageRepository) CreateMessage(recipientID uuid.UUID, metadata, content string) (domain.Message, error) {
	return createMessage(r.store.db, recipientID, metadata, content)
}

func createMessage(exec execer, recipientID uuid.UUID, metadata, content string) (domain.Message, error) {
	res, err := exec.Exec(`
		INSERT INTO messages (recipient_id, metadata, content)
		VALUES (?, ?, ?)`,
		recipientID.String(), metadata, content,
	)
	if err != nil {
		return domain.Message{}, domain.ErrDatabase(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Message{}, domain.ErrDatabase(err)
	}
	return domain.Message{ID: id, RecipientID: recipientID, Metadata: metadata, Content: content}, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// GetMessage fetches a single message owned by recipientID.
func (r MessageRepository) GetMessage(recipientID uuid.UUID, id int64) (*domain.Message, error) {
	row := r.store.db.QueryRow(`
		SELECT id, recipient_id, metadata, recipient_metadata, content
		FROM messages WHERE id = ? AND recipient_id = ?`, id, recipientID.String())

	var m domain.Message
	var recipientIDStr string
	var recipientMetadata sql.NullString
	if err := row.Scan(&m.ID, &recipientIDStr, &m.Metadata, &recipientMetadata, &m.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrDatabase(err)
	}
	rid, err := uuid.Parse(recipientIDStr)
	if err != nil {
		return nil, domain.ErrDatabase(err)
	}
	m.RecipientID = rid
	if recipientMetadata.Valid {
		m.RecipientMetadata = &recipientMetadata.String
	}
	return &m, nil
}

// UpdateRecipientMetadata sets the recipient-owned metadata field, the
// only field a recipient may write after receipt.
func (r MessageRepository) UpdateRecipientMetadata(recipientID uuid.UUID, id int64, recipientMetadata string) error {
	res, err := r.store.db.Exec(`
		UPDATE messages SET recipient_metadata = ?
		WHERE id = ? AND recipient_id = ?`, recipientMetadata, id, recipientID.String())
	if err != nil {
		return domain.ErrDatabase(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDatabase(err)
	}
	if n == 0 {
		return domain.ErrValidation("message %d not found for recipient", id)
	}
	return nil
}

// DeleteMessage removes a message from the recipient's mailbox.
func (r MessageRepository) DeleteMessage(recipientID uuid.UUID, id int64) error {
	res, err := r.store.db.Exec(`DELETE FROM messages WHERE id = ? AND recipient_id = ?`, id, recipientID.String())
	if err != nil {
		return domain.ErrDatabase(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDatabase(err)
	}
	if n == 0 {
		return domain.ErrValidation("message %d not found for recipient", id)
	}
	return nil
}

// ListMessages returns (id, metadata) summaries for recipientID, optionally
// filtered to ids above aboveID for incremental polling.
func (r MessageRepository) ListMessages(recipientID uuid.UUID, aboveID *int64) ([]domain.MessageSummary, error) {
	query := `SELECT id, metadata FROM messages WHERE recipient_id = ?`
	args := []interface{}{recipientID.String()}
	if aboveID != nil {
		query += ` AND id > ?`
		args = append(args, *aboveID)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.store.db.Query(query, args...)
	if err != nil {
		return nil, domain.ErrDatabase(err)
	}
	defer rows.Close()

	var out []domain.MessageSummary
	for rows.Next() {
		var s domain.MessageSummary
		if err := rows.Scan(&s.ID, &s.Metadata); err != nil {
			return nil, domain.ErrDatabase(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDatabase(err)
	}
	return out, nil
}
