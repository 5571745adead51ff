//go:build integration

// Package containers provides shared testcontainers fixtures for the
// integration suites. Containers start on first use and live for the whole
// test binary, so suites in one package pay the startup cost once.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the package-wide containers. All accessors are safe for
// concurrent use from parallel suites.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	kafka    *KafkaContainer
}

var (
	sharedManager *Manager
	sharedOnce    sync.Once
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	sharedOnce.Do(func() {
		sharedManager = &Manager{}
	})
	return sharedManager
}

// GetPostgres returns the shared Postgres container, starting it on first call.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t)
	}
	return m.postgres
}

// GetKafka returns the shared Redpanda container, starting it on first call.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.kafka == nil {
		m.kafka = NewKafkaContainer(t)
	}
	return m.kafka
}
