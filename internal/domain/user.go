package domain

import "github.com/google/uuid"

// User is registered once and immutable afterward.
type User struct {
	ID                  uuid.UUID `json:"id"`
	Username            string    `json:"username"`
	PublicEncryptionKey string    `json:"public_encryption_key"`
	PublicVerifyKey     string    `json:"public_verify_key"`
}

// UserRepository persists and resolves registered users.
type UserRepository interface {
	Create(username, publicEncryptionKey, publicVerifyKey string) (User, error)
	FindByUsername(username string) (*User, error)
	FindByID(id uuid.UUID) (*User, error)
}
