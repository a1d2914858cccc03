// Package challenge generates the random alphanumeric challenge strings
// that requested sessions ask clients to sign.
package challenge

import (
	"crypto/rand"

	"safemail/internal/config"
	"safemail/internal/logging"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns a fresh random alphanumeric string of
// config.ChallengeLength characters.
func Generate() (string, error) {
	buf := make([]byte, config.ChallengeLength)
	if _, err := rand.Read(buf); err != nil {
		logging.ErrorLog("challenge generation failed: %v", err)
		return "", err
	}
	out := make([]byte, config.ChallengeLength)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
