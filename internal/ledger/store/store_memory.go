package store

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"pactum/internal/ledger/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - AppendReceipt returns ErrDuplicateReceipt for an existing hash and
//   ErrInvalidChain when prev_hash does not match the subject's chain head
// - AppendRevocation returns ErrUnknownReceipt and ErrAlreadyRevoked
// - Find/Head return ErrNotFound when the requested entity does not exist
// - List methods return empty results, never ErrNotFound

// InMemoryStore keeps the ledger in an immutable snapshot swapped atomically
// on every append. Writers serialize on a mutex; readers load the current
// snapshot and never take a lock, so status and chain reads stay wait-free
// under a write-heavy ledger.
type InMemoryStore struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// snapshot is immutable once published. Records are never mutated after
// append, so snapshots share record pointers and only copy the containers.
type snapshot struct {
	receipts    map[id.ReceiptHash]*models.ConsentReceipt
	revocations map[id.ReceiptHash]*models.RevocationRecord
	chains      map[id.SubjectID][]id.ReceiptHash
	anchor      []id.ReceiptHash
}

// New constructs an empty in-memory ledger store.
func New() *InMemoryStore {
	s := &InMemoryStore{}
	s.snap.Store(&snapshot{
		receipts:    make(map[id.ReceiptHash]*models.ConsentReceipt),
		revocations: make(map[id.ReceiptHash]*models.RevocationRecord),
		chains:      make(map[id.SubjectID][]id.ReceiptHash),
	})
	return s
}

// AppendReceipt extends the subject chain and the global anchor sequence.
// The duplicate check runs before the chain check: identical content appended
// twice reports DuplicateReceipt even though its prev_hash is stale too.
func (s *InMemoryStore) AppendReceipt(_ context.Context, receipt *models.ConsentReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, ok := cur.receipts[receipt.Hash]; ok {
		return sentinel.ErrDuplicateReceipt
	}

	chain := cur.chains[receipt.SubjectID]
	var head id.ReceiptHash
	if len(chain) > 0 {
		head = chain[len(chain)-1]
	}
	if receipt.PrevHash != head {
		return sentinel.ErrInvalidChain
	}

	receipt.AnchorPosition = int64(len(cur.anchor)) + 1
	stored := cloneReceipt(receipt)

	next := cur.clone()
	next.receipts[stored.Hash] = stored
	next.chains[stored.SubjectID] = append(append([]id.ReceiptHash(nil), chain...), stored.Hash)
	next.anchor = append(append([]id.ReceiptHash(nil), cur.anchor...), stored.Hash)
	s.snap.Store(next)
	return nil
}

// AppendRevocation records the terminal revocation for a receipt.
func (s *InMemoryStore) AppendRevocation(_ context.Context, record *models.RevocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, ok := cur.receipts[record.ReceiptHash]; !ok {
		return sentinel.ErrUnknownReceipt
	}
	if _, ok := cur.revocations[record.ReceiptHash]; ok {
		return sentinel.ErrAlreadyRevoked
	}

	stored := cloneRevocation(record)
	next := cur.clone()
	next.revocations[stored.ReceiptHash] = stored
	s.snap.Store(next)
	return nil
}

func (s *InMemoryStore) FindByHash(_ context.Context, hash id.ReceiptHash) (*models.ConsentReceipt, error) {
	cur := s.snap.Load()
	receipt, ok := cur.receipts[hash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneReceipt(receipt), nil
}

func (s *InMemoryStore) FindRevocation(_ context.Context, hash id.ReceiptHash) (*models.RevocationRecord, error) {
	cur := s.snap.Load()
	record, ok := cur.revocations[hash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRevocation(record), nil
}

// Head returns the subject's latest receipt together with its revocation.
func (s *InMemoryStore) Head(_ context.Context, subjectID id.SubjectID) (*models.HeadState, error) {
	cur := s.snap.Load()
	chain := cur.chains[subjectID]
	if len(chain) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return cur.headState(chain[len(chain)-1]), nil
}

// ListBySubject returns the subject's chain, genesis first. A subject with
// no receipts yields an empty chain, not an error.
func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]*models.ConsentReceipt, error) {
	cur := s.snap.Load()
	chain := cur.chains[subjectID]
	receipts := make([]*models.ConsentReceipt, 0, len(chain))
	for _, hash := range chain {
		receipts = append(receipts, cloneReceipt(cur.receipts[hash]))
	}
	return receipts, nil
}

func (s *InMemoryStore) ListSubjects(_ context.Context) ([]id.SubjectID, error) {
	cur := s.snap.Load()
	subjects := make([]id.SubjectID, 0, len(cur.chains))
	for subjectID := range cur.chains {
		subjects = append(subjects, subjectID)
	}
	return subjects, nil
}

// ListHeads returns one HeadState per subject chain.
func (s *InMemoryStore) ListHeads(_ context.Context) ([]*models.HeadState, error) {
	cur := s.snap.Load()
	heads := make([]*models.HeadState, 0, len(cur.chains))
	for _, chain := range cur.chains {
		heads = append(heads, cur.headState(chain[len(chain)-1]))
	}
	return heads, nil
}

func (s *InMemoryStore) CountReceipts(_ context.Context) (models.ReceiptCounts, error) {
	cur := s.snap.Load()
	return models.ReceiptCounts{
		Total:    int64(len(cur.receipts)),
		Anchored: int64(len(cur.anchor)),
	}, nil
}

func (c *snapshot) clone() *snapshot {
	next := &snapshot{
		receipts:    make(map[id.ReceiptHash]*models.ConsentReceipt, len(c.receipts)+1),
		revocations: make(map[id.ReceiptHash]*models.RevocationRecord, len(c.revocations)+1),
		chains:      make(map[id.SubjectID][]id.ReceiptHash, len(c.chains)+1),
		anchor:      c.anchor,
	}
	for hash, receipt := range c.receipts {
		next.receipts[hash] = receipt
	}
	for hash, record := range c.revocations {
		next.revocations[hash] = record
	}
	for subjectID, chain := range c.chains {
		next.chains[subjectID] = chain
	}
	return next
}

func (c *snapshot) headState(hash id.ReceiptHash) *models.HeadState {
	state := &models.HeadState{Receipt: cloneReceipt(c.receipts[hash])}
	if record, ok := c.revocations[hash]; ok {
		state.Revocation = cloneRevocation(record)
	}
	return state
}

// cloneReceipt deep-copies a receipt so callers can never reach into a
// published snapshot.
func cloneReceipt(receipt *models.ConsentReceipt) *models.ConsentReceipt {
	clone := *receipt
	clone.Scope = slices.Clone(receipt.Scope)
	clone.Signature = slices.Clone(receipt.Signature)
	if receipt.ExpiresAt != nil {
		expiry := *receipt.ExpiresAt
		clone.ExpiresAt = &expiry
	}
	return &clone
}

func cloneRevocation(record *models.RevocationRecord) *models.RevocationRecord {
	clone := *record
	clone.Signature = slices.Clone(record.Signature)
	return &clone
}
