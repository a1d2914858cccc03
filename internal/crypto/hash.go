package crypto

import (
	"crypto"
	"crypto/sha256"
)

const cryptoSHA256 = crypto.SHA256

func sha256Sum(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return sum[:]
}
