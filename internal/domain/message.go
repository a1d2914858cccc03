package domain

import "github.com/google/uuid"

// Message is append-only from the sender's perspective; RecipientMetadata
// is the only field the recipient may later set.
type Message struct {
	ID                int64     `json:"id"`
	RecipientID       uuid.UUID `json:"recipient_id"`
	Metadata          string    `json:"metadata"`
	RecipientMetadata *string   `json:"recipient_metadata"`
	Content           string    `json:"content"`
}

// MessageRepository is the persistence port for the mailbox.
type MessageRepository interface {
	CreateMessage(recipientID uuid.UUID, metadata, content string) (Message, error)
	GetMessage(recipientID uuid.UUID, id int64) (*Message, error)
	UpdateRecipientMetadata(recipientID uuid.UUID, id int64, recipientMetadata string) error
	DeleteMessage(recipientID uuid.UUID, id int64) error
	ListMessages(recipientID uuid.UUID, aboveID *int64) ([]MessageSummary, error)
}

// MessageSummary is the (id, metadata) pair returned by the listing
// endpoint.
type MessageSummary struct {
	ID       int64  `json:"id"`
	Metadata string `json:"metadata"`
}

// OnetimeStampAdmitter performs the transactional bind of one-time-stamp
// consumption to message insertion. It rejects
// with ErrInvalidStamp when the stamp is already used_or_revoked.
type OnetimeStampAdmitter interface {
	AdmitOnetimeStamp(stampID, recipientID uuid.UUID, metadata, content string) (Message, error)
}
