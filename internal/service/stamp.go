package service

import (
	"time"

	"github.com/google/uuid"

	"safemail/internal/config"
	"safemail/internal/domain"
	"safemail/internal/logging"
	"safemail/internal/metrics"
	"safemail/internal/pow"
	"safemail/internal/serialize"
	"safemail/internal/utils"
)

// CryptoAdapter is the subset of internal/crypto.Service the stamp engine needs.
type CryptoAdapter interface {
	ValidateSignature(plaintext, sigB64, pubB64 string) bool
	ProduceSignature(plaintext, privB64 string) (string, error)
}

// StampEngine verifies periodic and one-time stamps and runs the
// system-issuance protocol.
type StampEngine struct {
	Users     domain.UserRepository
	Trackers  domain.OneTimeStampTrackerRepository
	Requests  domain.StampRequestRepository
	SystemKey domain.SystemKeyRepository
	Crypto    CryptoAdapter
}

// NewStampEngine constructs the stamp engine.
func NewStampEngine(users domain.UserRepository, trackers domain.OneTimeStampTrackerRepository, requests domain.StampRequestRepository, systemKey domain.SystemKeyRepository, crypto CryptoAdapter) *StampEngine {
	return &StampEngine{Users: users, Trackers: trackers, Requests: requests, SystemKey: systemKey, Crypto: crypto}
}

// VerifyPeriodicStamp checks a periodic stamp's signature, issuer
// constraint, and validity window: valid_from <= now <= valid_to.
func (e *StampEngine) VerifyPeriodicStamp(stamp domain.PeriodicStamp) error {
	now := time.Now().UTC()
	if now.Before(stamp.ValidFrom) || now.After(stamp.ValidTo) {
		return domain.ErrInvalidTimePeriod()
	}

	issuer, err := e.Users.FindByID(stamp.IssuerID)
	if err != nil {
		return err
	}
	if issuer == nil {
		return domain.ErrInvalidStamp()
	}
	recipient, err := e.Users.FindByID(stamp.RecipientID)
	if err != nil {
		return err
	}
	if recipient == nil {
		return domain.ErrInvalidStamp()
	}

	s := serialize.New()
	plaintext := serialize.Join(
		s.Serialize(stamp.IssuerID), s.Serialize(stamp.RecipientID), s.Serialize(stamp.SenderID),
		s.Serialize(stamp.ValidFrom), s.Serialize(stamp.ValidTo),
	)
	if !e.Crypto.ValidateSignature(plaintext, stamp.Signature, issuer.PublicVerifyKey) {
		return domain.ErrInvalidSignature()
	}
	if !(stamp.IssuerID == recipient.ID || stamp.IssuerID == domain.SystemIssuer) {
		return domain.ErrInvalidStamp()
	}
	return nil
}

// VerifyOnetimeStamp checks a one-time stamp's replay state, signature,
// expiry, and issuer constraint. It does not consume the
// stamp — consumption happens atomically with message insertion in the
// admission pipeline (store.Store.AdmitOnetimeStamp).
func (e *StampEngine) VerifyOnetimeStamp(stamp domain.OnetimeStamp) error {
	tracker, err := e.Trackers.GetByID(stamp.StampID)
	if err != nil {
		return err
	}
	if tracker != nil && tracker.UsedOrRevoked {
		return domain.ErrInvalidStamp()
	}

	issuerKey, err := e.resolveIssuerKey(stamp.IssuerID)
	if err != nil {
		return err
	}

	recipient, err := e.Users.FindByID(stamp.RecipientID)
	if err != nil {
		return err
	}
	if recipient == nil {
		return domain.ErrUserNotFound()
	}

	if stamp.ValidTo != nil && stamp.ValidTo.Before(time.Now().UTC()) {
		return domain.ErrInvalidTimePeriod()
	}

	s := serialize.New()
	plaintext := serialize.Join(
		s.Serialize(stamp.StampID), s.Serialize(stamp.IssuerID), s.Serialize(stamp.RecipientID),
		s.Serialize(stamp.SenderID), s.Serialize(stamp.ValidTo),
	)
	if !e.Crypto.ValidateSignature(plaintext, stamp.Signature, issuerKey) {
		return domain.ErrInvalidSignature()
	}
	if !(stamp.IssuerID == recipient.ID || stamp.IssuerID == domain.SystemIssuer) {
		return domain.ErrInvalidStamp()
	}
	return nil
}

// resolveIssuerKey returns the system public key for domain.SystemIssuer,
// or a registered user's verify key otherwise.
func (e *StampEngine) resolveIssuerKey(issuerID uuid.UUID) (string, error) {
	if issuerID == domain.SystemIssuer {
		keys, err := e.SystemKey.GetSystemKeys()
		if err != nil {
			return "", err
		}
		if keys == nil {
			panic("stamp engine: system keys were never initialized")
		}
		return keys.PublicKey, nil
	}
	issuer, err := e.Users.FindByID(issuerID)
	if err != nil {
		return "", err
	}
	if issuer == nil {
		return "", domain.ErrUserNotFound()
	}
	return issuer.PublicVerifyKey, nil
}

// RequestSystemIssue opens a proof-of-work challenge a client must solve
// to receive a fresh system-signed one-time stamp.
func (e *StampEngine) RequestSystemIssue(senderID, recipientID uuid.UUID) (domain.OneTimeStampRequest, error) {
	sender, err := e.Users.FindByID(senderID)
	if err != nil {
		return domain.OneTimeStampRequest{}, err
	}
	if sender == nil {
		return domain.OneTimeStampRequest{}, domain.ErrUserNotFound()
	}
	recipient, err := e.Users.FindByID(recipientID)
	if err != nil {
		return domain.OneTimeStampRequest{}, err
	}
	if recipient == nil {
		return domain.OneTimeStampRequest{}, domain.ErrUserNotFound()
	}

	id, err := e.Requests.CreateStampRequest(config.BaseStampDifficulty, recipientID)
	if err != nil {
		return domain.OneTimeStampRequest{}, err
	}
	req, err := e.Requests.GetStampRequest(id)
	if err != nil {
		return domain.OneTimeStampRequest{}, err
	}
	logging.InfoLog("stamp request opened [%s] recipient=[%s]", utils.HashID(id), utils.HashID(recipientID))
	return *req, nil
}

// IssueSystemStamp validates a solved proof-of-work token against an open
// stamp request and, on success, mints a fresh system-signed one-time
// stamp and registers its tracker row.
func (e *StampEngine) IssueSystemStamp(senderID, requestID uuid.UUID, token pow.Token) (domain.OnetimeStamp, error) {
	req, err := e.Requests.GetStampRequest(requestID)
	if err != nil {
		return domain.OnetimeStamp{}, err
	}
	if req == nil {
		return domain.OnetimeStamp{}, domain.ErrStampRequestNotFound()
	}
	if req.SolvedAt != nil {
		return domain.OnetimeStamp{}, domain.ErrStampRequestExpired()
	}
	if !time.Now().UTC().Before(req.ValidTo) {
		return domain.OnetimeStamp{}, domain.ErrStampRequestExpired()
	}

	if token.Score(requestID) < req.Difficulty {
		metrics.ProofOfWorkOutcomes.WithLabelValues("rejected").Inc()
		return domain.OnetimeStamp{}, domain.ErrInvalidProofOfWork()
	}
	metrics.ProofOfWorkOutcomes.WithLabelValues("accepted").Inc()

	keys, err := e.SystemKey.GetSystemKeys()
	if err != nil {
		return domain.OnetimeStamp{}, err
	}
	if keys == nil {
		panic("stamp engine: system keys were never initialized")
	}

	validTo := time.Now().UTC().Add(config.OnetimeStampValidity)
	stamp := domain.OnetimeStamp{
		StampID:     uuid.New(),
		IssuerID:    domain.SystemIssuer,
		RecipientID: req.RecipientID,
		SenderID:    senderID,
		ValidTo:     &validTo,
	}
	s := serialize.New()
	plaintext := serialize.Join(
		s.Serialize(stamp.StampID), s.Serialize(stamp.IssuerID), s.Serialize(stamp.RecipientID),
		s.Serialize(stamp.SenderID), s.Serialize(stamp.ValidTo),
	)
	sig, err := e.Crypto.ProduceSignature(plaintext, keys.PrivateKey)
	if err != nil {
		return domain.OnetimeStamp{}, err
	}
	stamp.Signature = sig

	if err := e.Requests.MarkSolved(requestID); err != nil {
		return domain.OnetimeStamp{}, err
	}
	if err := e.Trackers.Insert(stamp.StampID, stamp.RecipientID); err != nil {
		return domain.OnetimeStamp{}, err
	}
	metrics.StampsIssued.Inc()
	logging.InfoLog("system stamp issued [%s] recipient=[%s]", utils.HashID(stamp.StampID), utils.HashID(stamp.RecipientID))
	return stamp, nil
}
