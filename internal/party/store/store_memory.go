package store

import (
	"context"
	"strings"
	"sync"

	"pactum/internal/party/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// Error Contract:
// - Create returns ErrConflict when a grantor's display name is taken
// - FindByID returns ErrNotFound when the party does not exist
// - CountSubjects never errors

// InMemoryStore keeps parties in memory for unit tests and for running
// without a database. Party records are immutable after registration, so a
// plain map behind an RWMutex is enough.
type InMemoryStore struct {
	mu      sync.RWMutex
	parties map[id.PartyID]*models.Party
	// grantorNames indexes lowercased display names of grantors only;
	// subjects may share names freely.
	grantorNames map[string]id.PartyID
}

// New constructs an empty in-memory party store.
func New() *InMemoryStore {
	return &InMemoryStore{
		parties:      make(map[id.PartyID]*models.Party),
		grantorNames: make(map[string]id.PartyID),
	}
}

// Create registers a party. Grantor display names are unique
// case-insensitively.
func (s *InMemoryStore) Create(_ context.Context, party *models.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nameKey := strings.ToLower(party.DisplayName)
	if party.IsGrantor() {
		if _, taken := s.grantorNames[nameKey]; taken {
			return sentinel.ErrConflict
		}
	}

	stored := *party
	s.parties[party.ID] = &stored
	if party.IsGrantor() {
		s.grantorNames[nameKey] = party.ID
	}
	return nil
}

// FindByID returns the party with the given ID.
func (s *InMemoryStore) FindByID(_ context.Context, partyID id.PartyID) (*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	party, ok := s.parties[partyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *party
	return &found, nil
}

// CountSubjects returns the number of registered subjects.
func (s *InMemoryStore) CountSubjects(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, party := range s.parties {
		if party.IsSubject() {
			count++
		}
	}
	return count, nil
}
