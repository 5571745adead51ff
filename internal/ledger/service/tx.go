package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "pactum/pkg/domain-errors"
	platformsync "pactum/pkg/platform/sync"
)

// Shard contention metrics for monitoring lock behavior
var (
	chainLockWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pactum_ledger_chain_lock_wait_seconds",
		Help:    "Time spent waiting to acquire a subject chain lock",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	chainLockAcquisitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pactum_ledger_chain_lock_acquisitions_total",
		Help: "Total number of subject chain lock acquisitions",
	})
)

// chainLock serializes ledger mutations per subject chain. Appends for
// different subjects proceed concurrently; two appends racing for the same
// chain head resolve in arrival order, so exactly one extends the chain and
// the loser reports its stale prev hash.
type chainLock struct {
	mu *platformsync.ShardedMutex
}

func newChainLock() *chainLock {
	return &chainLock{mu: platformsync.NewShardedMutex()}
}

func (l *chainLock) run(ctx context.Context, key string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "chain mutation aborted: context cancelled")
	}

	lockStart := time.Now()
	l.mu.Lock(key)
	chainLockWaitDuration.Observe(time.Since(lockStart).Seconds())
	chainLockAcquisitions.Inc()
	defer l.mu.Unlock(key)

	// Check again after acquiring the lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "chain mutation aborted: context cancelled")
	}

	return fn()
}
