package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "development", cfg.HTTP.Environment)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Empty(t, cfg.HTTP.TrustedProxies)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "pactum.audit.events", cfg.Kafka.AuditTopic)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 32, cfg.Ledger.MaxScopes)
	assert.False(t, cfg.SeedDemo)
}

func TestFromEnvSeedDemo(t *testing.T) {
	t.Setenv("PACTUM_SEED_DEMO", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.SeedDemo)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PACTUM_ADDR", ":9999")
	t.Setenv("PACTUM_REQUEST_TIMEOUT", "5s")
	t.Setenv("PACTUM_TRUSTED_PROXIES", "10.0.0.0/8, 192.168.0.0/16")
	t.Setenv("PACTUM_MAX_SCOPES", "8")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.RequestTimeout)
	assert.Len(t, cfg.HTTP.TrustedProxies, 2)
	assert.Equal(t, 8, cfg.Ledger.MaxScopes)
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PACTUM_REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("PACTUM_DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestFromEnvRejectsBadProxyList(t *testing.T) {
	t.Setenv("PACTUM_TRUSTED_PROXIES", "10.0.0.0/8,not-a-cidr")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-cidr")
}
