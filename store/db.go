// Package store implements SafeMail's repository ports against SQLite, one
// connection shared across users, sessions, messages, and stamp
// bookkeeping tables.
package store

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the shared *sql.DB every repository is built from.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY NOT NULL,
	username TEXT NOT NULL UNIQUE CHECK(username <> ''),
	public_encryption_key TEXT NOT NULL CHECK(public_encryption_key <> ''),
	public_verify_key TEXT NOT NULL CHECK(public_verify_key <> '')
);

CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY NOT NULL,
	user_id TEXT NOT NULL REFERENCES users(id),
	active INTEGER NOT NULL DEFAULT 0,
	challenge_string TEXT NOT NULL,
	requested_at TEXT NOT NULL,
	activated_at TEXT,
	expires_at TEXT NOT NULL,
	logged_out INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recipient_id TEXT NOT NULL REFERENCES users(id),
	metadata TEXT NOT NULL,
	recipient_metadata TEXT,
	content TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS onetime_stamp_trackers (
	stamp_id TEXT PRIMARY KEY NOT NULL,
	recipient_id TEXT NOT NULL REFERENCES users(id),
	used_or_revoked INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS onetime_stamp_requests (
	stamp_request_id TEXT PRIMARY KEY NOT NULL,
	recipient_id TEXT NOT NULL REFERENCES users(id),
	difficulty INTEGER NOT NULL,
	valid_to TEXT NOT NULL,
	solved_at TEXT
);

CREATE TABLE IF NOT EXISTS system_keys (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	private_key TEXT NOT NULL,
	public_key TEXT NOT NULL
);
`

// Open connects to the SQLite database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows only one writer at a time; a single shared connection
	// serializes access instead of surfacing SQLITE_BUSY under concurrent
	// writes.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
