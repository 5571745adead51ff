package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pactum/internal/ledger/models"
	"pactum/internal/platform/metrics"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/circuit"
	"pactum/pkg/platform/sentinel"
)

const redisStatusKeyPrefix = "ledger:status:"

// RedisStatusCache caches derived receipt statuses in Redis with TTL-based
// eviction. The service decides what is cacheable; this layer only moves
// values. Entries are invalidated on revocation.
//
// A circuit breaker tracks Redis health. While it is open, reads report
// misses instead of surfacing errors and cache fills are skipped;
// invalidations are always attempted. Reads keep hitting Redis regardless of
// state, and those round trips are what close the breaker again.
type RedisStatusCache struct {
	client   *redis.Client
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	breaker  *circuit.Breaker
}

// NewRedisStatusCache constructs a Redis-backed status cache.
// Usage: pass a configured Redis client; metrics and logger may be nil.
func NewRedisStatusCache(client *redis.Client, cacheTTL time.Duration, metrics *metrics.Metrics, logger *slog.Logger) *RedisStatusCache {
	return &RedisStatusCache{
		client:   client,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		logger:   logger,
		breaker:  circuit.New("status-cache"),
	}
}

// TTL returns the configured cache entry lifetime.
func (c *RedisStatusCache) TTL() time.Duration {
	return c.cacheTTL
}

// FindStatus loads a cached status by receipt hash.
//
// Side effects: performs a Redis GET and records cache hit/miss metrics.
//
// Errors: returns ErrNotFound on cache miss, an undecodable entry, or any
// Redis failure while the circuit is open; wraps Redis errors otherwise.
func (c *RedisStatusCache) FindStatus(ctx context.Context, hash id.ReceiptHash) (models.Status, error) {
	value, err := c.client.Get(ctx, statusKey(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.redisHealthy(ctx)
			c.recordMiss()
			return "", sentinel.ErrNotFound
		}
		// A cancelled request says nothing about Redis health.
		if ctx.Err() == nil && c.redisFailed(ctx, err) {
			c.recordMiss()
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("find status cache: %w", err)
	}

	c.redisHealthy(ctx)
	status := models.Status(value)
	if !status.IsValid() {
		c.recordMiss()
		return "", sentinel.ErrNotFound
	}
	c.recordHit()
	return status, nil
}

// SaveStatus writes a derived status to Redis with TTL eviction. Fills are
// skipped while the circuit is open and resume once reads close it.
func (c *RedisStatusCache) SaveStatus(ctx context.Context, hash id.ReceiptHash, status models.Status) error {
	if c.breaker.IsOpen() {
		return nil
	}
	if err := c.client.Set(ctx, statusKey(hash), string(status), c.cacheTTL).Err(); err != nil {
		if ctx.Err() == nil {
			c.redisFailed(ctx, err)
		}
		return fmt.Errorf("save status cache: %w", err)
	}
	c.redisHealthy(ctx)
	return nil
}

// Invalidate drops the cached status for a receipt. Called on revocation so
// a stale active entry never outlives the revocation record; it runs even
// while the circuit is open.
func (c *RedisStatusCache) Invalidate(ctx context.Context, hash id.ReceiptHash) error {
	if err := c.client.Del(ctx, statusKey(hash)).Err(); err != nil {
		if ctx.Err() == nil {
			c.redisFailed(ctx, err)
		}
		return fmt.Errorf("invalidate status cache: %w", err)
	}
	c.redisHealthy(ctx)
	return nil
}

// redisFailed feeds a Redis error to the breaker and reports whether the
// caller should degrade instead of surfacing the error.
func (c *RedisStatusCache) redisFailed(ctx context.Context, err error) bool {
	degrade, change := c.breaker.RecordFailure()
	if change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "status cache circuit opened",
			"breaker", c.breaker.Name(),
			"error", err,
		)
	}
	return degrade
}

func (c *RedisStatusCache) redisHealthy(ctx context.Context) {
	_, change := c.breaker.RecordSuccess()
	if change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "status cache circuit closed",
			"breaker", c.breaker.Name(),
		)
	}
}

func (c *RedisStatusCache) recordHit() {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordCacheHit("status")
}

func (c *RedisStatusCache) recordMiss() {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordCacheMiss("status")
}

func statusKey(hash id.ReceiptHash) string {
	return redisStatusKeyPrefix + hash.String()
}
