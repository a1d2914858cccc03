package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"safemail/internal/crypto"
	"safemail/internal/service"
	"safemail/store"
)

// testServer wires a full chi router against a fresh SQLite-backed store,
// the same shape production wiring uses in cmd/safemaild.
type testServer struct {
	router http.Handler
	crypto crypto.Service
	store  *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "api_test.db")
	s, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cr := crypto.New()
	if err := service.BootstrapSystemKeys(s.SystemKeys(), cr); err != nil {
		t.Fatalf("BootstrapSystemKeys failed: %v", err)
	}

	users := service.NewUserService(s.Users(), cr)
	sessions := service.NewSessionMachine(s.Users(), s.Sessions(), cr)
	stamps := service.NewStampEngine(s.Users(), s.StampTrackers(), s.StampRequests(), s.SystemKeys(), cr)
	messages := service.NewMessageAdmitter(s.Users(), s.Messages(), s, stamps, cr)

	router := NewRouter(Services{Users: users, Sessions: sessions, Stamps: stamps, Messages: messages})
	return &testServer{router: router, crypto: cr, store: s}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("Authorization", "Bearer "+sessionID)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin registers a user with a fresh keypair and completes the
// login handshake, returning the active session id alongside the keys.
func (ts *testServer) registerAndLogin(t *testing.T, username string) (sessionID string, pub, priv string) {
	t.Helper()
	pub, priv, err := ts.crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	rec := ts.do(t, http.MethodPost, "/user/register", map[string]string{
		"username": username, "public_encryption_key": pub, "public_verify_key": pub,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/user/login", map[string]string{"username": username}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var session struct {
		SessionID       string `json:"session_id"`
		ChallengeString string `json:"challenge_string"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session failed: %v", err)
	}

	sig, err := ts.crypto.ProduceSignature(session.ChallengeString, priv)
	if err != nil {
		t.Fatalf("ProduceSignature failed: %v", err)
	}
	rec = ts.do(t, http.MethodPost, "/user/login/confirm", map[string]string{
		"session_id": session.SessionID, "challenge_signature": sig,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login confirm failed: %d %s", rec.Code, rec.Body.String())
	}

	return session.SessionID, pub, priv
}
