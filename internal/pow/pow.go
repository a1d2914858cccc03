// Package pow implements the proof-of-work admission check backing
// system-issued one-time stamps: a client searches for a
// nonce whose hash against the stamp-request challenge scores at or above
// the server-fixed difficulty.
package pow

import (
	"crypto/sha256"
	"encoding/base64"
	"math/big"

	"github.com/google/uuid"
)

// maxScore is 2^128, the ceiling a score is derived against — the
// proof-of-work challenge space is treated as 128 bits (Go has no native
// 128-bit integer; big.Int stands in, and results are clamped to uint64
// since the sole accepted difficulty, 50_000, fits comfortably within it —
// see DESIGN.md).
var maxScore = new(big.Int).Lsh(big.NewInt(1), 128)

// Token is the opaque proof-of-work value a client submits. Nonce is
// client-chosen; Score is deterministic in (challenge, Nonce).
type Token struct {
	Nonce string `json:"nonce"`
}

// Score computes the deterministic fitness of the token against challenge.
// A nonce that is not valid base64 scores 0, never errors; a score too
// large for uint64 is clamped to the maximum uint64.
func (t Token) Score(challenge uuid.UUID) uint64 {
	nonceBytes, err := base64.StdEncoding.DecodeString(t.Nonce)
	if err != nil {
		return 0
	}
	h := sha256.New()
	h.Write([]byte(challenge.String()))
	h.Write(nonceBytes)
	sum := h.Sum(nil)

	hashInt := new(big.Int).SetBytes(sum[:16])
	denom := new(big.Int).Add(hashInt, big.NewInt(1))
	score := new(big.Int).Div(maxScore, denom)

	if !score.IsUint64() {
		return ^uint64(0)
	}
	return score.Uint64()
}

// Solve is a reference brute-force solver used by tests and by any future
// client tooling: it searches incrementing nonces until the score meets
// difficulty, or attempts are exhausted.
func Solve(challenge uuid.UUID, difficulty uint64, maxAttempts int) (Token, bool) {
	for i := 0; i < maxAttempts; i++ {
		nonceBytes := big.NewInt(int64(i)).Bytes()
		token := Token{Nonce: base64.StdEncoding.EncodeToString(nonceBytes)}
		if token.Score(challenge) >= difficulty {
			return token, true
		}
	}
	return Token{}, false
}
