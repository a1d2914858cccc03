package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"safemail/internal/crypto"
	"safemail/internal/domain"
	"safemail/internal/serialize"
)

func newMessageFixture(t *testing.T) (*MessageAdmitter, *fakeUsers, *fakeTrackers, crypto.Service) {
	t.Helper()
	users := newFakeUsers()
	trackers := newFakeTrackers()
	requests := newFakeRequests()
	sysKeys := &fakeSystemKeys{}
	cr := crypto.New()

	pub, priv, err := cr.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	if err := sysKeys.InitSystemKeys(domain.SystemKeyPair{PrivateKey: priv, PublicKey: pub}); err != nil {
		t.Fatalf("InitSystemKeys failed: %v", err)
	}

	engine := NewStampEngine(users, trackers, requests, sysKeys, cr)
	messages := newFakeMessages()
	admitter := &fakeAdmitter{trackers: trackers}
	ma := NewMessageAdmitter(users, messages, admitter, engine, cr)
	return ma, users, trackers, cr
}

func sign(t *testing.T, cr crypto.Service, priv, metadata, content string) string {
	t.Helper()
	sig, err := cr.ProduceSignature(serialize.Join(metadata, content), priv)
	if err != nil {
		t.Fatalf("ProduceSignature failed: %v", err)
	}
	return sig
}

func signOnetime(t *testing.T, cr crypto.Service, priv string, stamp domain.OnetimeStamp) string {
	t.Helper()
	s := serialize.New()
	plaintext := serialize.Join(
		s.Serialize(stamp.StampID), s.Serialize(stamp.IssuerID), s.Serialize(stamp.RecipientID),
		s.Serialize(stamp.SenderID), s.Serialize(stamp.ValidTo),
	)
	sig, err := cr.ProduceSignature(plaintext, priv)
	if err != nil {
		t.Fatalf("ProduceSignature failed: %v", err)
	}
	return sig
}

func TestSendWithOnetimeStampRejectsReuse(t *testing.T) {
	ma, users, trackers, cr := newMessageFixture(t)

	senderPub, senderPriv, err := cr.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	sender, err := users.Create("sender", "enc", senderPub)
	if err != nil {
		t.Fatalf("create sender failed: %v", err)
	}
	recipientPub, recipientPriv, err := cr.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	recipient, err := users.Create("recipient", "enc", recipientPub)
	if err != nil {
		t.Fatalf("create recipient failed: %v", err)
	}

	stampID := uuid.New()
	if err := trackers.Insert(stampID, recipient.ID); err != nil {
		t.Fatalf("Insert tracker failed: %v", err)
	}
	stamp := domain.OnetimeStamp{StampID: stampID, IssuerID: recipient.ID, RecipientID: recipient.ID, SenderID: sender.ID}
	stamp.Signature = signOnetime(t, cr, recipientPriv, stamp)

	sig := sign(t, cr, senderPriv, "meta", "content")

	if _, err := ma.SendWithOnetimeStamp(sender.ID, recipient.ID, "content", "meta", sig, stamp); err != nil {
		t.Fatalf("first send should succeed: %v", err)
	}

	sig2 := sign(t, cr, senderPriv, "meta2", "content2")
	_, err = ma.SendWithOnetimeStamp(sender.ID, recipient.ID, "content2", "meta2", sig2, stamp)
	if de, ok := err.(*domain.Error); !ok || de.Code != "invalid_stamp" {
		t.Fatalf("expected invalid_stamp on reuse, got %v", err)
	}
}

func TestSendWithOnetimeStampRejectsBadBodySignature(t *testing.T) {
	ma, users, trackers, cr := newMessageFixture(t)

	senderPub, _, err := cr.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	sender, err := users.Create("sender2", "enc", senderPub)
	if err != nil {
		t.Fatalf("create sender failed: %v", err)
	}
	recipientPub, recipientPriv, err := cr.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	recipient, err := users.Create("recipient2", "enc", recipientPub)
	if err != nil {
		t.Fatalf("create recipient failed: %v", err)
	}

	stampID := uuid.New()
	if err := trackers.Insert(stampID, recipient.ID); err != nil {
		t.Fatalf("Insert tracker failed: %v", err)
	}
	stamp := domain.OnetimeStamp{StampID: stampID, IssuerID: recipient.ID, RecipientID: recipient.ID, SenderID: sender.ID}
	stamp.Signature = signOnetime(t, cr, recipientPriv, stamp)

	_, err = ma.SendWithOnetimeStamp(sender.ID, recipient.ID, "content", "meta", "not-a-real-signature", stamp)
	if de, ok := err.(*domain.Error); !ok || de.Code != "invalid_signature" {
		t.Fatalf("expected invalid_signature, got %v", err)
	}
}

func TestSendWithPeriodicStampThenUpdateAndDelete(t *testing.T) {
	ma, users, _, cr := newMessageFixture(t)

	recipientPub, recipientPriv, err := cr.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	recipient, err := users.Create("recipient3", "enc", recipientPub)
	if err != nil {
		t.Fatalf("create recipient failed: %v", err)
	}
	senderPub, senderPriv, err := cr.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	sender, err := users.Create("sender3", "enc", senderPub)
	if err != nil {
		t.Fatalf("create sender failed: %v", err)
	}

	now := time.Now().UTC()
	stamp := domain.PeriodicStamp{
		IssuerID: recipient.ID, RecipientID: recipient.ID, SenderID: sender.ID,
		ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour),
	}
	s := serialize.New()
	plaintext := serialize.Join(
		s.Serialize(stamp.IssuerID), s.Serialize(stamp.RecipientID), s.Serialize(stamp.SenderID),
		s.Serialize(stamp.ValidFrom), s.Serialize(stamp.ValidTo),
	)
	stampSig, err := cr.ProduceSignature(plaintext, recipientPriv)
	if err != nil {
		t.Fatalf("ProduceSignature failed: %v", err)
	}
	stamp.Signature = stampSig

	bodySig := sign(t, cr, senderPriv, "meta", "content")
	msg, err := ma.SendWithPeriodicStamp(sender.ID, recipient.ID, "content", "meta", bodySig, stamp)
	if err != nil {
		t.Fatalf("SendWithPeriodicStamp failed: %v", err)
	}

	if err := ma.UpdateRecipientMetadata(recipient.ID, msg.ID, "read"); err != nil {
		t.Fatalf("UpdateRecipientMetadata failed: %v", err)
	}
	got, err := ma.GetMessage(recipient.ID, msg.ID)
	if err != nil || got == nil || got.RecipientMetadata == nil || *got.RecipientMetadata != "read" {
		t.Fatalf("expected updated recipient metadata, got %+v, err %v", got, err)
	}

	if err := ma.DeleteMessage(recipient.ID, msg.ID); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	got, err = ma.GetMessage(recipient.ID, msg.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after delete, got %+v", got)
	}
}
