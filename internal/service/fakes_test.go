package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"safemail/internal/domain"
)

// fakeUsers is an in-memory domain.UserRepository for service-layer unit
// tests, keeping call sites free of a real database.
type fakeUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]domain.User
	byName map[string]uuid.UUID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]domain.User{}, byName: map[string]uuid.UUID{}}
}

func (f *fakeUsers) Create(username, encKey, verifyKey string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byName[username]; exists {
		return domain.User{}, domain.ErrUserAlreadyExists()
	}
	u := domain.User{ID: uuid.New(), Username: username, PublicEncryptionKey: encKey, PublicVerifyKey: verifyKey}
	f.byID[u.ID] = u
	f.byName[username] = u.ID
	return u, nil
}

func (f *fakeUsers) FindByUsername(username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byName[username]
	if !ok {
		return nil, nil
	}
	u := f.byID[id]
	return &u, nil
}

func (f *fakeUsers) FindByID(id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// fakeTrackers is an in-memory domain.OneTimeStampTrackerRepository.
type fakeTrackers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*domain.OneTimeStampTracker
}

func newFakeTrackers() *fakeTrackers {
	return &fakeTrackers{byID: map[uuid.UUID]*domain.OneTimeStampTracker{}}
}

func (f *fakeTrackers) Insert(stampID, recipientID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[stampID] = &domain.OneTimeStampTracker{StampID: stampID, RecipientID: recipientID}
	return nil
}

func (f *fakeTrackers) GetByID(stampID uuid.UUID) (*domain.OneTimeStampTracker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[stampID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTrackers) SetUsedOrRevoked(stampID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.byID[stampID]; ok {
		t.UsedOrRevoked = true
	}
	return nil
}

// fakeAdmitter mimics store.Store.AdmitOnetimeStamp's transactional
// semantics over the in-memory tracker map, for message-service tests.
type fakeAdmitter struct {
	trackers *fakeTrackers
	mu       sync.Mutex
	nextID   int64
}

func (f *fakeAdmitter) AdmitOnetimeStamp(stampID, recipientID uuid.UUID, metadata, content string) (domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tracker, err := f.trackers.GetByID(stampID)
	if err != nil {
		return domain.Message{}, err
	}
	if tracker == nil || tracker.RecipientID != recipientID || tracker.UsedOrRevoked {
		return domain.Message{}, domain.ErrInvalidStamp()
	}
	if err := f.trackers.SetUsedOrRevoked(stampID); err != nil {
		return domain.Message{}, err
	}
	f.nextID++
	return domain.Message{ID: f.nextID, RecipientID: recipientID, Metadata: metadata, Content: content}, nil
}

// fakeRequests is an in-memory domain.StampRequestRepository.
type fakeRequests struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.OneTimeStampRequest
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{byID: map[uuid.UUID]*domain.OneTimeStampRequest{}}
}

func (f *fakeRequests) CreateStampRequest(difficulty uint64, recipientID uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.byID[id] = &domain.OneTimeStampRequest{
		StampRequestID: id,
		RecipientID:    recipientID,
		Difficulty:     difficulty,
		ValidTo:        time.Now().UTC().Add(time.Hour),
	}
	return id, nil
}

func (f *fakeRequests) GetStampRequest(id uuid.UUID) (*domain.OneTimeStampRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRequests) MarkSolved(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok || req.SolvedAt != nil {
		return domain.ErrStampRequestExpired()
	}
	now := time.Now().UTC()
	req.SolvedAt = &now
	return nil
}

// fakeSystemKeys is an in-memory domain.SystemKeyRepository.
type fakeSystemKeys struct {
	mu   sync.Mutex
	keys *domain.SystemKeyPair
}

func (f *fakeSystemKeys) InitSystemKeys(keys domain.SystemKeyPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = &keys
	}
	return nil
}

func (f *fakeSystemKeys) GetSystemKeys() (*domain.SystemKeyPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys, nil
}

// fakeMessages is an in-memory domain.MessageRepository.
type fakeMessages struct {
	mu     sync.Mutex
	byID   map[int64]*domain.Message
	nextID int64
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{byID: map[int64]*domain.Message{}}
}

func (f *fakeMessages) CreateMessage(recipientID uuid.UUID, metadata, content string) (domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := domain.Message{ID: f.nextID, RecipientID: recipientID, Metadata: metadata, Content: content}
	f.byID[m.ID] = &m
	return m, nil
}

func (f *fakeMessages) GetMessage(recipientID uuid.UUID, id int64) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok || m.RecipientID != recipientID {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessages) UpdateRecipientMetadata(recipientID uuid.UUID, id int64, recipientMetadata string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok || m.RecipientID != recipientID {
		return domain.ErrValidation("message %d not found for recipient", id)
	}
	m.RecipientMetadata = &recipientMetadata
	return nil
}

func (f *fakeMessages) DeleteMessage(recipientID uuid.UUID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok || m.RecipientID != recipientID {
		return domain.ErrValidation("message %d not found for recipient", id)
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeMessages) ListMessages(recipientID uuid.UUID, aboveID *int64) ([]domain.MessageSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.MessageSummary
	for _, m := range f.byID {
		if m.RecipientID != recipientID {
			continue
		}
		if aboveID != nil && m.ID <= *aboveID {
			continue
		}
		out = append(out, domain.MessageSummary{ID: m.ID, Metadata: m.Metadata})
	}
	return out, nil
}

// fakeSessions is an in-memory domain.SessionRepository.
type fakeSessions struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[uuid.UUID]*domain.Session{}}
}

func (f *fakeSessions) RequestSession(userID uuid.UUID) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := domain.Session{SessionID: uuid.New(), UserID: userID, ChallengeString: "challenge", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	f.byID[s.SessionID] = &s
	return s, nil
}

func (f *fakeSessions) ActivateSession(sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[sessionID]
	if !ok {
		return domain.ErrSessionNotFound()
	}
	s.Active = true
	return nil
}

func (f *fakeSessions) GetSession(sessionID uuid.UUID, includeInactive bool) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[sessionID]
	if !ok {
		return nil, nil
	}
	if !includeInactive && !s.Active {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) LogoutSession(sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[sessionID]; !ok {
		return domain.ErrSessionNotFound()
	}
	delete(f.byID, sessionID)
	return nil
}
