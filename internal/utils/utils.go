package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// HashUsername creates a consistent hash for username logging without
// exposing the username itself.
func HashUsername(username string) string {
	hash := sha256.Sum256([]byte(username))
	return hex.EncodeToString(hash[:])[:8]
}

// HashID creates a short, consistent hash of a UUID for log correlation
// without printing the raw identifier.
func HashID(id uuid.UUID) string {
	hash := sha256.Sum256(id[:])
	return hex.EncodeToString(hash[:])[:12]
}
