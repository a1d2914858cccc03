// Package crypto implements SafeMail's signature scheme — RSA-PSS over
// SHA-256, salt length equal to digest length — on top of Go's crypto/rsa.
package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"

	"safemail/internal/logging"
)

const rsaKeyBits = 2048

// Service implements the signature-verification, signing, and key-parsing
// capability bundle used throughout the application layer.
type Service struct{}

// New constructs the RSA-PSS cryptography adapter.
func New() Service { return Service{} }

// ValidatePublicKey reports whether b64 decodes to a base64 SPKI DER RSA
// public key. Never panics on malformed input.
func (Service) ValidatePublicKey(b64 string) bool {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return false
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return false
	}
	_, ok := pub.(*rsa.PublicKey)
	return ok
}

// ValidateSignature verifies an RSA-PSS/SHA-256 signature. It returns false
// on any verification failure, including malformed base64 in either
// argument — it never panics.
func (Service) ValidateSignature(plaintext, sigB64, pubB64 string) bool {
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false
	}
	der, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return false
	}
	pubAny, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return false
	}
	pub, ok := pubAny.(*rsa.PublicKey)
	if !ok {
		return false
	}
	digest := sha256Sum(plaintext)
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}
	err = rsa.VerifyPSS(pub, cryptoSHA256, digest, sig, opts)
	return err == nil
}

// ProduceSignature signs plaintext under the given base64 PEM-encoded RSA
// private key, returning the base64-encoded signature. This is only ever
// invoked server-side, to sign system-issued stamps with the system key.
func (Service) ProduceSignature(plaintext, privB64 string) (string, error) {
	priv, err := parsePrivateKey(privB64)
	if err != nil {
		return "", err
	}
	digest := sha256Sum(plaintext)
	opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}
	sig, err := rsa.SignPSS(rand.Reader, priv, cryptoSHA256, digest, opts)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// GenerateKeyPair produces a fresh RSA-2048 keypair: (base64 SPKI DER
// public key, base64 PEM private key).
func (Service) GenerateKeyPair() (pubB64, privB64 string, err error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		logging.ErrorLog("crypto: key generation failed: %v", err)
		return "", "", err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return "", "", err
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", err
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	return base64.StdEncoding.EncodeToString(pubDER), base64.StdEncoding.EncodeToString(privPEM), nil
}

func parsePrivateKey(privB64 string) (*rsa.PrivateKey, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(privB64)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("crypto: invalid PEM block")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("crypto: not an RSA private key")
	}
	return rsaKey, nil
}
