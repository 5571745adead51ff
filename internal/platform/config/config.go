// Package config builds runtime configuration from PACTUM_-prefixed
// environment variables so main stays lean. Every value has a default;
// the only hard failure is an unparseable trusted-proxy list, because
// silently ignoring it would change which clients the server believes.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all runtime configuration, built once at startup.
type Config struct {
	LogLevel string

	// SeedDemo populates the in-memory stores with demo data at boot.
	// Ignored when a database is configured.
	SeedDemo bool

	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Ledger   LedgerConfig
}

// HTTPConfig captures HTTP server level configuration.
type HTTPConfig struct {
	Addr            string
	Environment     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	TrustedProxies  []netip.Prefix
}

// DatabaseConfig captures Postgres pool configuration.
// An empty URL means the service runs on in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig captures Redis client configuration.
// An empty URL disables the status cache.
type RedisConfig struct {
	URL            string
	PoolSize       int
	MinIdleConns   int
	DialTimeout    time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	StatusCacheTTL time.Duration
}

// KafkaConfig captures audit pipeline configuration.
// Empty brokers disable the outbox worker and consumer.
type KafkaConfig struct {
	Brokers            string
	AuditTopic         string
	AuditConsumerGroup string
}

// AuthConfig captures grantor token configuration.
type AuthConfig struct {
	JWTSigningKey string
	TokenTTL      time.Duration
}

// LedgerConfig captures receipt validation limits.
type LedgerConfig struct {
	MaxScopes      int
	MaxScopeLength int
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	trustedProxies, err := parsePrefixes(os.Getenv("PACTUM_TRUSTED_PROXIES"))
	if err != nil {
		return Config{}, fmt.Errorf("PACTUM_TRUSTED_PROXIES: %w", err)
	}

	jwtSigningKey := os.Getenv("PACTUM_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		LogLevel: envString("PACTUM_LOG_LEVEL", "info"),
		SeedDemo: envBool("PACTUM_SEED_DEMO", false),
		HTTP: HTTPConfig{
			Addr:            envString("PACTUM_ADDR", ":8080"),
			Environment:     envString("PACTUM_ENV", "development"),
			RequestTimeout:  envDuration("PACTUM_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: envDuration("PACTUM_SHUTDOWN_TIMEOUT", 15*time.Second),
			MaxBodyBytes:    envInt64("PACTUM_MAX_BODY_BYTES", 1<<20),
			TrustedProxies:  trustedProxies,
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("PACTUM_DATABASE_URL"),
			MaxOpenConns:    envInt("PACTUM_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("PACTUM_DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("PACTUM_DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:            os.Getenv("PACTUM_REDIS_URL"),
			PoolSize:       envInt("PACTUM_REDIS_POOL_SIZE", 10),
			MinIdleConns:   envInt("PACTUM_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:    envDuration("PACTUM_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:    envDuration("PACTUM_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:   envDuration("PACTUM_REDIS_WRITE_TIMEOUT", 3*time.Second),
			StatusCacheTTL: envDuration("PACTUM_STATUS_CACHE_TTL", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:            os.Getenv("PACTUM_KAFKA_BROKERS"),
			AuditTopic:         envString("PACTUM_AUDIT_TOPIC", "pactum.audit.events"),
			AuditConsumerGroup: envString("PACTUM_AUDIT_CONSUMER_GROUP", "pactum-audit-store"),
		},
		Auth: AuthConfig{
			JWTSigningKey: jwtSigningKey,
			TokenTTL:      envDuration("PACTUM_TOKEN_TTL", 15*time.Minute),
		},
		Ledger: LedgerConfig{
			MaxScopes:      envInt("PACTUM_MAX_SCOPES", 32),
			MaxScopeLength: envInt("PACTUM_MAX_SCOPE_LENGTH", 128),
		},
	}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

// parsePrefixes parses a comma-separated list of CIDR prefixes.
func parsePrefixes(csv string) ([]netip.Prefix, error) {
	if csv == "" {
		return nil, nil
	}

	var prefixes []netip.Prefix
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", part, err)
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, nil
}
