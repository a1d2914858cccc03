package models

import (
	"github.com/google/uuid"

	"safemail/internal/domain"
	"safemail/internal/pow"
)

// RegisterRequest registers a new, immutable user.
type RegisterRequest struct {
	Username            string `json:"username" validate:"required"`
	PublicEncryptionKey string `json:"public_encryption_key" validate:"required,base64"`
	PublicVerifyKey     string `json:"public_verify_key" validate:"required,base64"`
}

// RequestSessionRequest starts the session state machine.
type RequestSessionRequest struct {
	Username string `json:"username" validate:"required"`
}

// ActivateSessionRequest completes a requested session with a signed challenge.
type ActivateSessionRequest struct {
	ChallengeSignature string `json:"challenge_signature" validate:"required,base64"`
}

// RequestSystemIssueRequest opens a proof-of-work challenge.
type RequestSystemIssueRequest struct {
	SenderID    uuid.UUID `json:"sender_id" validate:"required"`
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
}

// IssueSystemStampRequest submits a solved proof-of-work token.
type IssueSystemStampRequest struct {
	StampRequestID uuid.UUID `json:"stamp_request_id" validate:"required"`
	ProofOfWork    pow.Token `json:"proof_of_work" validate:"required"`
}

// SendOnetimeMessageRequest admits a message backed by a one-time stamp.
type SendOnetimeMessageRequest struct {
	RecipientID uuid.UUID           `json:"recipient_id" validate:"required"`
	Content     string              `json:"content" validate:"required"`
	Metadata    string              `json:"metadata"`
	Signature   string              `json:"signature" validate:"required,base64"`
	Stamp       domain.OnetimeStamp `json:"stamp" validate:"required"`
}

// SendPeriodicMessageRequest admits a message backed by a periodic stamp.
type SendPeriodicMessageRequest struct {
	SenderID    uuid.UUID            `json:"sender_id" validate:"required"`
	RecipientID uuid.UUID            `json:"recipient_id" validate:"required"`
	Content     string               `json:"content" validate:"required"`
	Metadata    string               `json:"metadata"`
	Signature   string               `json:"signature" validate:"required,base64"`
	Stamp       domain.PeriodicStamp `json:"stamp" validate:"required"`
}

// UpdateRecipientMetadataRequest sets the recipient-owned metadata field.
type UpdateRecipientMetadataRequest struct {
	RecipientMetadata string `json:"recipient_metadata"`
}
