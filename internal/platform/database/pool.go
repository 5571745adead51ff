// Package database owns the Postgres connection pool shared by every
// store. The ledger's serialized chain appends hold a connection for the
// length of an advisory-locked transaction, so the pool is sized above
// the shard count to keep reads from starving.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const connectTimeout = 5 * time.Second

var (
	dbPoolOpenConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pactum_db_pool_open_conns",
		Help: "Established connections, in use and idle",
	})
	dbPoolInUseConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pactum_db_pool_in_use_conns",
		Help: "Connections currently executing work",
	})
	dbPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pactum_db_pool_idle_conns",
		Help: "Idle connections held by the pool",
	})
	dbPoolWaitCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pactum_db_pool_wait_count_total",
		Help: "Cumulative count of waits for a free connection",
	})
)

// Config holds pool sizing and the connection URL.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the production pool sizing.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Pool wraps *sql.DB so health checks and metrics tolerate a nil receiver
// when Postgres is not configured.
type Pool struct {
	db  *sql.DB
	cfg Config
}

// New opens a pgx-backed pool and verifies it with a bounded ping.
// An empty URL returns nil, nil; the assembly falls back to memory stores.
func New(cfg Config) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{db: db, cfg: cfg}, nil
}

// DB exposes the underlying *sql.DB for the stores.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Health pings the database within the caller's deadline.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return fmt.Errorf("database not configured")
	}
	return p.db.PingContext(ctx)
}

// Close shuts the pool down. Safe on a nil receiver.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Stats returns the pool counters, zeroed when unconfigured.
func (p *Pool) Stats() sql.DBStats {
	if p == nil || p.db == nil {
		return sql.DBStats{}
	}
	return p.db.Stats()
}

// RecordPoolStats publishes pool counters to Prometheus. Driven by the
// same assembly ticker as the Redis pool collector.
func (p *Pool) RecordPoolStats() {
	stats := p.Stats()
	dbPoolOpenConns.Set(float64(stats.OpenConnections))
	dbPoolInUseConns.Set(float64(stats.InUse))
	dbPoolIdleConns.Set(float64(stats.Idle))
	dbPoolWaitCount.Set(float64(stats.WaitCount))
}
