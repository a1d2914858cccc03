package service

import (
	"github.com/google/uuid"

	"safemail/internal/domain"
	"safemail/internal/logging"
	"safemail/internal/metrics"
	"safemail/internal/serialize"
	"safemail/internal/utils"
)

// MessageAdmitter implements the two send entry points and the mailbox
// read path.
type MessageAdmitter struct {
	Users    domain.UserRepository
	Messages domain.MessageRepository
	Admitter domain.OnetimeStampAdmitter
	Stamps   *StampEngine
	Crypto   CryptoAdapter
}

// NewMessageAdmitter constructs the message admission pipeline.
func NewMessageAdmitter(users domain.UserRepository, messages domain.MessageRepository, admitter domain.OnetimeStampAdmitter, stamps *StampEngine, crypto CryptoAdapter) *MessageAdmitter {
	return &MessageAdmitter{Users: users, Messages: messages, Admitter: admitter, Stamps: stamps, Crypto: crypto}
}

func (a *MessageAdmitter) verifyBodySignature(senderID uuid.UUID, metadata, content, signature string) error {
	sender, err := a.Users.FindByID(senderID)
	if err != nil {
		return err
	}
	if sender == nil {
		return domain.ErrUserNotFound()
	}
	plaintext := serialize.Join(metadata, content)
	if !a.Crypto.ValidateSignature(plaintext, signature, sender.PublicVerifyKey) {
		return domain.ErrInvalidSignature()
	}
	return nil
}

// SendWithOnetimeStamp admits a message backed by a one-time stamp.
// Verification and consumption are split: VerifyOnetimeStamp
// checks the stamp is well-formed and not yet used, then AdmitOnetimeStamp
// re-checks and flips used_or_revoked inside the same transaction as the
// message insert, closing the race a verify-then-separately-consume split
// would otherwise leave open.
func (a *MessageAdmitter) SendWithOnetimeStamp(senderID, recipientID uuid.UUID, content, metadata, signature string, stamp domain.OnetimeStamp) (domain.Message, error) {
	if err := a.Stamps.VerifyOnetimeStamp(stamp); err != nil {
		metrics.MessagesRejected.WithLabelValues(string(categoryOf(err))).Inc()
		return domain.Message{}, err
	}
	if err := a.verifyBodySignature(senderID, metadata, content, signature); err != nil {
		metrics.MessagesRejected.WithLabelValues(string(categoryOf(err))).Inc()
		return domain.Message{}, err
	}

	msg, err := a.Admitter.AdmitOnetimeStamp(stamp.StampID, recipientID, metadata, content)
	if err != nil {
		metrics.MessagesRejected.WithLabelValues(string(categoryOf(err))).Inc()
		return domain.Message{}, err
	}
	metrics.MessagesAdmitted.WithLabelValues("onetime").Inc()
	logging.InfoLog("message admitted (onetime) id=%d recipient=[%s]", msg.ID, utils.HashID(recipientID))
	return msg, nil
}

// SendWithPeriodicStamp admits a message backed by a periodic stamp.
// Periodic stamps are stateless; there is no tracker side effect.
func (a *MessageAdmitter) SendWithPeriodicStamp(senderID, recipientID uuid.UUID, content, metadata, signature string, stamp domain.PeriodicStamp) (domain.Message, error) {
	if err := a.Stamps.VerifyPeriodicStamp(stamp); err != nil {
		metrics.MessagesRejected.WithLabelValues(string(categoryOf(err))).Inc()
		return domain.Message{}, err
	}
	if err := a.verifyBodySignature(senderID, metadata, content, signature); err != nil {
		metrics.MessagesRejected.WithLabelValues(string(categoryOf(err))).Inc()
		return domain.Message{}, err
	}

	msg, err := a.Messages.CreateMessage(recipientID, metadata, content)
	if err != nil {
		metrics.MessagesRejected.WithLabelValues(string(categoryOf(err))).Inc()
		return domain.Message{}, err
	}
	metrics.MessagesAdmitted.WithLabelValues("periodic").Inc()
	logging.InfoLog("message admitted (periodic) id=%d recipient=[%s]", msg.ID, utils.HashID(recipientID))
	return msg, nil
}

// categoryOf extracts the domain error category for metric labeling,
// falling back to "unknown" for an error that didn't originate in domain.
func categoryOf(err error) domain.Category {
	if de, ok := err.(*domain.Error); ok {
		return de.Category
	}
	return "unknown"
}

// ListMessages returns the recipient's mailbox summary, pinned to the
// authenticated caller.
func (a *MessageAdmitter) ListMessages(recipientID uuid.UUID, aboveID *int64) ([]domain.MessageSummary, error) {
	return a.Messages.ListMessages(recipientID, aboveID)
}

// GetMessage returns a single message iff owned by recipientID.
func (a *MessageAdmitter) GetMessage(recipientID uuid.UUID, id int64) (*domain.Message, error) {
	return a.Messages.GetMessage(recipientID, id)
}

// UpdateRecipientMetadata sets the recipient-owned metadata field.
func (a *MessageAdmitter) UpdateRecipientMetadata(recipientID uuid.UUID, id int64, recipientMetadata string) error {
	return a.Messages.UpdateRecipientMetadata(recipientID, id, recipientMetadata)
}

// DeleteMessage removes a message from the recipient's mailbox.
func (a *MessageAdmitter) DeleteMessage(recipientID uuid.UUID, id int64) error {
	return a.Messages.DeleteMessage(recipientID, id)
}
