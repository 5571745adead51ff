package store

import (
	"context"
	"sort"
	"sync"

	"pactum/internal/reuse/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// InMemoryStore keeps reuse events in memory. Used in unit tests and when
// running without a database.
//
// Error Contract:
// - Create returns sentinel.ErrConflict when the reuse ID already exists
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ReuseID]*models.ReuseEvent
}

// New creates an empty in-memory reuse store.
func New() *InMemoryStore {
	return &InMemoryStore{
		events: make(map[id.ReuseID]*models.ReuseEvent),
	}
}

// Create appends a reuse event to the log.
func (s *InMemoryStore) Create(_ context.Context, event *models.ReuseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *event
	s.events[event.ID] = &clone
	return nil
}

// FindByID returns the reuse event for the given ID.
func (s *InMemoryStore) FindByID(_ context.Context, reuseID id.ReuseID) (*models.ReuseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, exists := s.events[reuseID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

// ListByArtifact returns the reuse events for one artifact in log order.
func (s *InMemoryStore) ListByArtifact(_ context.Context, artifactID id.ArtifactID) ([]*models.ReuseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*models.ReuseEvent
	for _, event := range s.events {
		if event.ArtifactID == artifactID {
			clone := *event
			events = append(events, &clone)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
	return events, nil
}

// CountReuses summarizes the log for reciprocity reporting.
func (s *InMemoryStore) CountReuses(_ context.Context) (models.ReuseCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts models.ReuseCounts
	for _, event := range s.events {
		counts.Total++
		if !event.Disclosed {
			counts.Silent++
		}
	}
	return counts, nil
}
