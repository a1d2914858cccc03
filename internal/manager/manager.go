// Package manager provides bounded worker pools for CPU-bound cryptography
// (signing, signature verification, key generation) and for database calls,
// so that such work can run off the HTTP goroutine.
package manager

import (
	"context"
	"time"

	"safemail/internal/config"
	"safemail/internal/workerpool"
)

// WorkManager provides separate pools for DB and cryptography work, so a
// slow signature check never stalls request handling for unrelated
// connections.
type WorkManager struct {
	db     *workerpool.Pool
	crypto *workerpool.Pool
}

// Option configures the WorkManager.
type Option func(*options)

type options struct {
	dbWorkers     int
	cryptoWorkers int
	queueSize     int
}

// WithDBWorkers sets the DB worker count.
func WithDBWorkers(n int) Option { return func(o *options) { o.dbWorkers = n } }

// WithCryptoWorkers sets the crypto worker count.
func WithCryptoWorkers(n int) Option { return func(o *options) { o.cryptoWorkers = n } }

// WithQueueSize sets the shared queue size (per pool).
func WithQueueSize(n int) Option { return func(o *options) { o.queueSize = n } }

// NewWorkManager constructs the manager with the given options (or defaults from config).
func NewWorkManager(opts ...Option) *WorkManager {
	o := &options{
		dbWorkers:     config.DBWorkerCount(),
		cryptoWorkers: config.CryptoWorkerCount(),
		queueSize:     config.WorkerQueueSize(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &WorkManager{
		db:     workerpool.New("db", o.dbWorkers, o.queueSize),
		crypto: workerpool.New("crypto", o.cryptoWorkers, o.queueSize),
	}
}

// Close shuts down all pools.
func (m *WorkManager) Close() {
	if m == nil {
		return
	}
	m.db.Close()
	m.crypto.Close()
}

// SubmitDB schedules a database task; the task receives a context that the
// pool cancels after 30 seconds.
func (m *WorkManager) SubmitDB(fn func(ctx context.Context)) error {
	return m.db.Submit(func(ctx context.Context) { fn(ctx) })
}

// SubmitCrypto schedules a cryptographic task (signing, signature
// verification, key generation).
func (m *WorkManager) SubmitCrypto(fn func(ctx context.Context)) error {
	return m.crypto.Submit(func(ctx context.Context) { fn(ctx) })
}

// RunWithTimeout runs a function respecting a deadline and returns whether it completed.
func RunWithTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context)) bool {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	done := make(chan struct{})
	go func() { fn(ctx); close(done) }()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
