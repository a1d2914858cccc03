package crypto

import "context"

// Pool is the subset of internal/manager.WorkManager the pooled adapter
// dispatches CPU-bound cryptography onto.
type Pool interface {
	SubmitCrypto(fn func(ctx context.Context)) error
}

// Pooled wraps Service so every call runs on the crypto worker pool
// instead of the calling request goroutine, blocking the caller until the
// result is ready.
type Pooled struct {
	inner Service
	pool  Pool
}

// NewPooled constructs a worker-pool-backed cryptography adapter.
func NewPooled(pool Pool, inner Service) Pooled {
	return Pooled{inner: inner, pool: pool}
}

func (p Pooled) ValidatePublicKey(b64 string) bool {
	var ok bool
	p.run(func() { ok = p.inner.ValidatePublicKey(b64) })
	return ok
}

func (p Pooled) ValidateSignature(plaintext, sigB64, pubB64 string) bool {
	var ok bool
	p.run(func() { ok = p.inner.ValidateSignature(plaintext, sigB64, pubB64) })
	return ok
}

func (p Pooled) ProduceSignature(plaintext, privB64 string) (string, error) {
	var sig string
	var err error
	p.run(func() { sig, err = p.inner.ProduceSignature(plaintext, privB64) })
	return sig, err
}

func (p Pooled) GenerateKeyPair() (pubB64, privB64 string, err error) {
	p.run(func() { pubB64, privB64, err = p.inner.GenerateKeyPair() })
	return
}

// run submits fn to the pool and blocks until it completes. A full queue
// falls back to running inline so a cryptography call never silently
// fails under load.
func (p Pooled) run(fn func()) {
	done := make(chan struct{})
	err := p.pool.SubmitCrypto(func(ctx context.Context) {
		fn()
		close(done)
	})
	if err != nil {
		fn()
		return
	}
	<-done
}
