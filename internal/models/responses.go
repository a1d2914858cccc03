package models

import (
	"time"

	"github.com/google/uuid"

	"safemail/internal/domain"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Error    string `json:"error"`
}

// NewErrorResponse maps a domain.Error onto its wire representation.
func NewErrorResponse(err *domain.Error) ErrorResponse {
	return ErrorResponse{Category: string(err.Category), Code: err.Code, Error: err.Error()}
}

// UserResponse is the public view of a registered user.
type UserResponse struct {
	ID                  uuid.UUID `json:"id"`
	Username            string    `json:"username"`
	PublicEncryptionKey string    `json:"public_encryption_key"`
	PublicVerifyKey     string    `json:"public_verify_key"`
}

// NewUserResponse converts a domain.User to its wire representation.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, PublicEncryptionKey: u.PublicEncryptionKey, PublicVerifyKey: u.PublicVerifyKey}
}

// SessionResponse is returned by request_session, including the challenge
// string the client must sign to activate the session.
type SessionResponse struct {
	SessionID       uuid.UUID `json:"session_id"`
	ChallengeString string    `json:"challenge_string"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// NewSessionResponse converts a domain.Session to its wire representation.
func NewSessionResponse(s domain.Session) SessionResponse {
	return SessionResponse{SessionID: s.SessionID, ChallengeString: s.ChallengeString, ExpiresAt: s.ExpiresAt}
}

// StampRequestResponse is returned by request_system_issue.
type StampRequestResponse struct {
	StampRequestID uuid.UUID `json:"stamp_request_id"`
	Difficulty     uint64    `json:"difficulty"`
	ValidTo        time.Time `json:"valid_to"`
}

// NewStampRequestResponse converts a domain.OneTimeStampRequest to its wire representation.
func NewStampRequestResponse(r domain.OneTimeStampRequest) StampRequestResponse {
	return StampRequestResponse{StampRequestID: r.StampRequestID, Difficulty: r.Difficulty, ValidTo: r.ValidTo}
}

// OnetimeStampResponse is the signed stamp returned after proof of work.
type OnetimeStampResponse struct {
	StampID     uuid.UUID  `json:"stamp_id"`
	IssuerID    uuid.UUID  `json:"issuer_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	ValidTo     *time.Time `json:"valid_to"`
	Signature   string     `json:"signature"`
}

// NewOnetimeStampResponse converts a domain.OnetimeStamp to its wire representation.
func NewOnetimeStampResponse(s domain.OnetimeStamp) OnetimeStampResponse {
	return OnetimeStampResponse{
		StampID: s.StampID, IssuerID: s.IssuerID, RecipientID: s.RecipientID,
		SenderID: s.SenderID, ValidTo: s.ValidTo, Signature: s.Signature,
	}
}

// MessageResponse is the full view of a message.
type MessageResponse struct {
	ID                int64     `json:"id"`
	RecipientID       uuid.UUID `json:"recipient_id"`
	Metadata          string    `json:"metadata"`
	RecipientMetadata *string   `json:"recipient_metadata"`
	Content           string    `json:"content"`
}

// NewMessageResponse converts a domain.Message to its wire representation.
func NewMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{ID: m.ID, RecipientID: m.RecipientID, Metadata: m.Metadata, RecipientMetadata: m.RecipientMetadata, Content: m.Content}
}
