package store

import (
	"context"
	"sync"

	"pactum/internal/ingest/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// InMemoryStore keeps ingest records in memory. Used in unit tests and when
// running without a database.
//
// Error Contract:
// - Create returns sentinel.ErrConflict when the ingest ID already exists
// - FindByID returns sentinel.ErrNotFound for unknown ingests
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.IngestID]*models.IngestRecord
}

// New creates an empty in-memory ingest store.
func New() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[id.IngestID]*models.IngestRecord),
	}
}

// Create stores a new ingest record.
func (s *InMemoryStore) Create(_ context.Context, record *models.IngestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// FindByID returns the ingest record for the given ID.
func (s *InMemoryStore) FindByID(_ context.Context, ingestID id.IngestID) (*models.IngestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[ingestID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

// CountExtractive counts admitted extractive ingests.
func (s *InMemoryStore) CountExtractive(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if record.Extractive {
			count++
		}
	}
	return count, nil
}

func cloneRecord(record *models.IngestRecord) *models.IngestRecord {
	clone := *record
	clone.RequiredScopes = append([]string(nil), record.RequiredScopes...)
	if record.ArtifactID != nil {
		artifactID := *record.ArtifactID
		clone.ArtifactID = &artifactID
	}
	return &clone
}
