package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"safemail/internal/domain"
)

// UserRepository implements domain.UserRepository against the users table.
type UserRepository struct {
	store *Store
}

// Users returns the user repository bound to this store.
func (s *Store) Users() UserRepository { return UserRepository{store: s} }

// Create registers a new, immutable user.
func (r UserRepository) Create(username, publicEncryptionKey, publicVerifyKey string) (domain.User, error) {
	user := domain.User{
		ID:                  uuid.New(),
		Username:            username,
		PublicEncryptionKey: publicEncryptionKey,
		PublicVerifyKey:     publicVerifyKey,
	}
	_, err := r.store.db.Exec(`
		INSERT INTO users (id, username, public_encryption_key, public_verify_key)
		VALUES (?, ?, ?, ?)`,
		user.ID.String(), user.Username, user.PublicEncryptionKey, user.PublicVerifyKey,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.User{}, domain.ErrUserAlreadyExists()
		}
		return domain.User{}, domain.ErrDatabase(err)
	}
	return user, nil
}

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var u domain.User
	var idStr string
	if err := row.Scan(&idStr, &u.Username, &u.PublicEncryptionKey, &u.PublicVerifyKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrDatabase(err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, domain.ErrDatabase(err)
	}
	u.ID = id
	return &u, nil
}

// FindByUsername resolves a user by username, returning (nil, nil) when absent.
func (r UserRepository) FindByUsername(username string) (*domain.User, error) {
	row := r.store.db.QueryRow(`
		SELECT id, username, public_encryption_key, public_verify_key
		FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// FindByID resolves a user by id, returning (nil, nil) when absent.
func (r UserRepository) FindByID(id uuid.UUID) (*domain.User, error) {
	row := r.store.db.QueryRow(`
		SELECT id, username, public_encryption_key, public_verify_key
		FROM users WHERE id = ?`, id.String())
	return scanUser(row)
}
