// Package redis owns the process-wide Redis client used by the receipt
// status cache. Redis is optional: when no URL is configured the ledger
// serves every status read from the store.
package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"pactum/internal/platform/config"
)

var (
	poolHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pactum_redis_pool_hits_total",
		Help: "Connections served from the pool",
	})
	poolMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pactum_redis_pool_misses_total",
		Help: "Connections that required a new dial",
	})
	poolTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pactum_redis_pool_timeouts_total",
		Help: "Pool waits that timed out",
	})
	poolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pactum_redis_pool_total_conns",
		Help: "Total connections currently in the pool",
	})
	poolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pactum_redis_pool_idle_conns",
		Help: "Idle connections currently in the pool",
	})
	poolStaleConns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pactum_redis_pool_stale_conns_total",
		Help: "Stale connections evicted from the pool",
	})
)

// Client wraps go-redis with pool instrumentation. lastStats holds the
// previous PoolStats snapshot; go-redis exposes cumulative counters, so
// Prometheus counters are fed the per-interval delta.
type Client struct {
	*redis.Client
	lastStats *redis.PoolStats
}

// New dials Redis and verifies the connection with a ping. A nil, nil
// return means Redis is not configured and the caller should run without
// the cache.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether Redis answers a ping.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}

// RecordPoolStats publishes pool statistics to Prometheus. The assembly
// calls it on a ticker alongside the database pool collector.
func (c *Client) RecordPoolStats() {
	stats := c.PoolStats()

	poolTotalConns.Set(float64(stats.TotalConns))
	poolIdleConns.Set(float64(stats.IdleConns))

	prev := c.lastStats
	if prev == nil {
		prev = &redis.PoolStats{}
	}
	addDelta(poolHits, stats.Hits, prev.Hits)
	addDelta(poolMisses, stats.Misses, prev.Misses)
	addDelta(poolTimeouts, stats.Timeouts, prev.Timeouts)
	addDelta(poolStaleConns, stats.StaleConns, prev.StaleConns)

	c.lastStats = stats
}

func addDelta(counter prometheus.Counter, current, previous uint32) {
	if current > previous {
		counter.Add(float64(current - previous))
	}
}
