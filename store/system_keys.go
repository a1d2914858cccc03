package store

import (
	"database/sql"
	"errors"

	"safemail/internal/domain"
)

// SystemKeyRepository implements domain.SystemKeyRepository against the
// single-row system_keys table.
type SystemKeyRepository struct {
	store *Store
}

// SystemKeys returns the system-key repository bound to this store.
func (s *Store) SystemKeys() SystemKeyRepository { return SystemKeyRepository{store: s} }

// InitSystemKeys writes the singleton keypair exactly once. A second call
// (e.g. a concurrent startup of a second instance) is a silent no-op — the
// existing row wins. The guard lives in the database rather than an
// in-process sync.Once since the key must survive restarts.
func (r SystemKeyRepository) InitSystemKeys(keys domain.SystemKeyPair) error {
	_, err := r.store.db.Exec(`
		INSERT INTO system_keys (id, private_key, public_key)
		SELECT 1, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM system_keys WHERE id = 1)`,
		keys.PrivateKey, keys.PublicKey,
	)
	if err != nil {
		return domain.ErrDatabase(err)
	}
	return nil
}

// GetSystemKeys returns the singleton keypair, or nil if never initialized.
func (r SystemKeyRepository) GetSystemKeys() (*domain.SystemKeyPair, error) {
	var keys domain.SystemKeyPair
	err := r.store.db.QueryRow(`SELECT private_key, public_key FROM system_keys WHERE id = 1`).
		Scan(&keys.PrivateKey, &keys.PublicKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrDatabase(err)
	}
	return &keys, nil
}
