package service

import (
	"time"

	"safemail/internal/domain"
	"safemail/internal/logging"
)

// KeyGenerator is the subset of internal/crypto.Service system key
// bootstrap needs.
type KeyGenerator interface {
	GenerateKeyPair() (pubB64, privB64 string, err error)
}

// BootstrapSystemKeys ensures the singleton system keypair exists,
// generating one only if persistence reports none yet, so the key survives
// process restarts instead of being regenerated on every boot.
func BootstrapSystemKeys(repo domain.SystemKeyRepository, gen KeyGenerator) error {
	existing, err := repo.GetSystemKeys()
	if err != nil {
		return err
	}
	if existing != nil {
		logging.DebugLog("system keys already initialized")
		return nil
	}

	start := time.Now()
	logging.DebugLog("system key generation started")
	pub, priv, err := gen.GenerateKeyPair()
	if err != nil {
		logging.ErrorLog("system key generation failed: %v", err)
		return err
	}

	if err := repo.InitSystemKeys(domain.SystemKeyPair{PrivateKey: priv, PublicKey: pub}); err != nil {
		return err
	}
	logging.InfoLog("system key generation success %v", time.Since(start))
	return nil
}
