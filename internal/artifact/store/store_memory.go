package store

import (
	"context"
	"sort"
	"sync"

	"pactum/internal/artifact/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// ListFilter narrows List results. Nil fields match everything.
type ListFilter struct {
	State *models.State
}

// Error Contract:
// - FindByID, TransitionState, Attribute return ErrNotFound for unknown artifacts
// - TransitionState returns ErrInvalidState when the stored state no longer
//   matches the expected one (a concurrent transition won)
// - List and the Count methods return empty results, never ErrNotFound

// InMemoryStore keeps artifacts in memory for unit tests and for running
// without a database.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[id.ArtifactID]*models.Artifact
}

// New constructs an empty in-memory artifact store.
func New() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[id.ArtifactID]*models.Artifact)}
}

// Create stores a new artifact.
func (s *InMemoryStore) Create(_ context.Context, artifact *models.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifact.ID] = cloneArtifact(artifact)
	return nil
}

// FindByID returns the artifact with the given ID.
func (s *InMemoryStore) FindByID(_ context.Context, artifactID id.ArtifactID) (*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.artifacts[artifactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneArtifact(artifact), nil
}

// TransitionState swaps the artifact state, compare-and-set on the expected
// current state so concurrent transitions cannot silently overwrite each
// other.
func (s *InMemoryStore) TransitionState(_ context.Context, artifactID id.ArtifactID, from, to models.State, everPublished bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.artifacts[artifactID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if artifact.State != from {
		return sentinel.ErrInvalidState
	}
	artifact.State = to
	if everPublished {
		artifact.EverPublished = true
	}
	return nil
}

// Attribute records a source subject. The return reports whether the subject
// was newly added.
func (s *InMemoryStore) Attribute(_ context.Context, artifactID id.ArtifactID, subjectID id.SubjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.artifacts[artifactID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	return artifact.Attribute(subjectID), nil
}

// List returns artifacts matching the filter, oldest first.
func (s *InMemoryStore) List(_ context.Context, filter ListFilter) ([]*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Artifact, 0, len(s.artifacts))
	for _, artifact := range s.artifacts {
		if filter.State != nil && artifact.State != *filter.State {
			continue
		}
		matched = append(matched, cloneArtifact(artifact))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

// CountByState tallies artifacts per lifecycle state.
func (s *InMemoryStore) CountByState(_ context.Context) (map[models.State]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.State]int64)
	for _, artifact := range s.artifacts {
		counts[artifact.State]++
	}
	return counts, nil
}

// CountEverPublished counts artifacts that ever reached published.
func (s *InMemoryStore) CountEverPublished(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, artifact := range s.artifacts {
		if artifact.EverPublished {
			count++
		}
	}
	return count, nil
}

// CountAttributed counts artifacts with at least one source subject.
func (s *InMemoryStore) CountAttributed(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, artifact := range s.artifacts {
		if artifact.IsAttributed() {
			count++
		}
	}
	return count, nil
}

func cloneArtifact(artifact *models.Artifact) *models.Artifact {
	cloned := *artifact
	cloned.Attributions = append([]id.SubjectID(nil), artifact.Attributions...)
	return &cloned
}
