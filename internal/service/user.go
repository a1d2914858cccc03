package service

import (
	"github.com/google/uuid"

	"safemail/internal/domain"
)

// KeyValidator is the subset of internal/crypto.Service user registration needs.
type KeyValidator interface {
	ValidatePublicKey(b64 string) bool
}

// UserService implements registration and lookup.
type UserService struct {
	Users  domain.UserRepository
	Crypto KeyValidator
}

// NewUserService constructs the user service.
func NewUserService(users domain.UserRepository, crypto KeyValidator) *UserService {
	return &UserService{Users: users, Crypto: crypto}
}

// Register creates a user, rejecting a malformed username or keys before
// ever touching persistence.
func (s *UserService) Register(username, publicEncryptionKey, publicVerifyKey string) (domain.User, error) {
	if !validUsername(username) {
		return domain.User{}, domain.ErrInvalidUsername()
	}
	if !s.Crypto.ValidatePublicKey(publicEncryptionKey) {
		return domain.User{}, domain.ErrInvalidPublicKey()
	}
	if !s.Crypto.ValidatePublicKey(publicVerifyKey) {
		return domain.User{}, domain.ErrInvalidPublicKey()
	}
	return s.Users.Create(username, publicEncryptionKey, publicVerifyKey)
}

// validUsername requires at least 3 ASCII letters, digits, underscores, or
// hyphens.
func validUsername(username string) bool {
	if len(username) < 3 {
		return false
	}
	for _, c := range username {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

// GetByUsername resolves a user by username.
func (s *UserService) GetByUsername(username string) (*domain.User, error) {
	return s.Users.FindByUsername(username)
}

// GetByID resolves a user by id.
func (s *UserService) GetByID(id uuid.UUID) (*domain.User, error) {
	return s.Users.FindByID(id)
}
