package domain

import (
	"time"

	"github.com/google/uuid"
)

// SystemIssuer is the all-zero identity representing the server's own
// signing authority.
var SystemIssuer = uuid.Nil

// PeriodicStamp is verified stateless: the server never persists it.
type PeriodicStamp struct {
	IssuerID    uuid.UUID `json:"issuer_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	SenderID    uuid.UUID `json:"sender_id"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidTo     time.Time `json:"valid_to"`
	Signature   string    `json:"signature"`
}

// OnetimeStamp is single-use, tracked server-side by StampID.
type OnetimeStamp struct {
	StampID     uuid.UUID  `json:"stamp_id"`
	IssuerID    uuid.UUID  `json:"issuer_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	ValidTo     *time.Time `json:"valid_to"`
	Signature   string     `json:"signature"`
}

// OneTimeStampTracker records single-use consumption for a one-time stamp.
type OneTimeStampTracker struct {
	StampID       uuid.UUID
	RecipientID   uuid.UUID
	UsedOrRevoked bool
}

// OneTimeStampTrackerRepository backs the single-use guarantee. Its methods
// run outside any transaction; consumption bound to message insertion in one
// transaction is OnetimeStampAdmitter's job.
type OneTimeStampTrackerRepository interface {
	Insert(stampID, recipientID uuid.UUID) error
	GetByID(stampID uuid.UUID) (*OneTimeStampTracker, error)
	SetUsedOrRevoked(stampID uuid.UUID) error
}

// OneTimeStampRequest is the PoW challenge issued by request_system_issue,
// solved by issue_system_stamp.
type OneTimeStampRequest struct {
	StampRequestID uuid.UUID
	RecipientID    uuid.UUID
	Difficulty     uint64
	ValidTo        time.Time
	SolvedAt       *time.Time
}

// StampRequestRepository persists one-time stamp requests.
type StampRequestRepository interface {
	CreateStampRequest(difficulty uint64, recipientID uuid.UUID) (uuid.UUID, error)
	GetStampRequest(stampRequestID uuid.UUID) (*OneTimeStampRequest, error)
	MarkSolved(stampRequestID uuid.UUID) error
}

// SystemKeyPair is the singleton keypair used to sign system-issued
// one-time stamps.
type SystemKeyPair struct {
	PrivateKey string
	PublicKey  string
}

// SystemKeyRepository guards the singleton with an insert-if-absent.
type SystemKeyRepository interface {
	InitSystemKeys(keys SystemKeyPair) error
	GetSystemKeys() (*SystemKeyPair, error)
}
