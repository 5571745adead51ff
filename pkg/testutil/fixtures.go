package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	ledgermodels "pactum/internal/ledger/models"
	id "pactum/pkg/domain"
	pstrings "pactum/pkg/platform/strings"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	SubjectID1  id.SubjectID
	SubjectID2  id.SubjectID
	GrantorID1  id.GrantorID
	GrantorID2  id.GrantorID
	PartyID1    id.PartyID
	PartyID2    id.PartyID
	ArtifactID1 id.ArtifactID
	ArtifactID2 id.ArtifactID
	IngestID1   id.IngestID
}{
	SubjectID1:  id.SubjectID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	SubjectID2:  id.SubjectID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	GrantorID1:  id.GrantorID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	GrantorID2:  id.GrantorID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
	PartyID1:    id.PartyID(uuid.MustParse("bbbb0000-0000-0000-0000-000000000001")),
	PartyID2:    id.PartyID(uuid.MustParse("bbbb0000-0000-0000-0000-000000000002")),
	ArtifactID1: id.ArtifactID(uuid.MustParse("cccc0000-0000-0000-0000-000000000001")),
	ArtifactID2: id.ArtifactID(uuid.MustParse("cccc0000-0000-0000-0000-000000000002")),
	IngestID1:   id.IngestID(uuid.MustParse("eeee0000-0000-0000-0000-000000000001")),
}

// BaseTime is a fixed whole-second UTC instant receipts are issued at by
// default. Canonical receipt bytes carry whole seconds only, so fixtures
// must never use time.Now directly.
var BaseTime = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// Signer wraps an Ed25519 key pair for producing signed test fixtures.
type Signer struct {
	Public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// NewSigner generates a fresh Ed25519 key pair.
func NewSigner() *Signer {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(fmt.Sprintf("testutil: generate key: %v", err))
	}
	return &Signer{Public: public, private: private}
}

// Sign signs arbitrary bytes with the fixture key.
func (s *Signer) Sign(data []byte) []byte {
	return ed25519.Sign(s.private, data)
}

// SignRevocation produces a valid revocation signature for the receipt hash.
func (s *Signer) SignRevocation(receiptHash id.ReceiptHash) []byte {
	return s.Sign(ledgermodels.RevocationSigningBytes(receiptHash))
}

// ReceiptBuilder provides a fluent interface for building signed test receipts.
type ReceiptBuilder struct {
	signer     *Signer
	subjectID  id.SubjectID
	grantorID  id.GrantorID
	scope      []string
	extractive bool
	issuedAt   time.Time
	expiresAt  *time.Time
	prevHash   id.ReceiptHash
}

// NewReceiptBuilder creates a ReceiptBuilder with sensible defaults: a genesis
// receipt for SubjectID1 issued by GrantorID1 at BaseTime with no expiry.
func NewReceiptBuilder(signer *Signer) *ReceiptBuilder {
	return &ReceiptBuilder{
		signer:    signer,
		subjectID: TestIDs.SubjectID1,
		grantorID: TestIDs.GrantorID1,
		scope:     []string{"analytics", "billing"},
		issuedAt:  BaseTime,
	}
}

func (b *ReceiptBuilder) WithSubject(subjectID id.SubjectID) *ReceiptBuilder {
	b.subjectID = subjectID
	return b
}

func (b *ReceiptBuilder) WithGrantor(grantorID id.GrantorID) *ReceiptBuilder {
	b.grantorID = grantorID
	return b
}

func (b *ReceiptBuilder) WithScope(scope ...string) *ReceiptBuilder {
	b.scope = scope
	return b
}

func (b *ReceiptBuilder) Extractive(extractive bool) *ReceiptBuilder {
	b.extractive = extractive
	return b
}

func (b *ReceiptBuilder) IssuedAt(t time.Time) *ReceiptBuilder {
	b.issuedAt = t
	return b
}

func (b *ReceiptBuilder) ExpiresAt(t time.Time) *ReceiptBuilder {
	b.expiresAt = &t
	return b
}

func (b *ReceiptBuilder) WithPrevHash(prevHash id.ReceiptHash) *ReceiptBuilder {
	b.prevHash = prevHash
	return b
}

// Build canonicalizes the scope, signs the canonical receipt bytes and
// constructs the receipt exactly the way a well-behaved client would.
func (b *ReceiptBuilder) Build() (*ledgermodels.ConsentReceipt, error) {
	scope := pstrings.SortedSet(b.scope)
	if scope == nil {
		scope = []string{}
	}
	unsigned := &ledgermodels.ConsentReceipt{
		SubjectID:  b.subjectID,
		GrantorID:  b.grantorID,
		Scope:      scope,
		Extractive: b.extractive,
		IssuedAt:   b.issuedAt,
		ExpiresAt:  b.expiresAt,
		PrevHash:   b.prevHash,
	}
	signingBytes, err := unsigned.SigningBytes()
	if err != nil {
		return nil, err
	}
	return ledgermodels.NewReceipt(
		b.subjectID, b.grantorID, b.scope, b.extractive,
		b.issuedAt, b.expiresAt, b.prevHash, b.signer.Sign(signingBytes),
	)
}

// MustBuild builds the receipt or panics. For tests only.
func (b *ReceiptBuilder) MustBuild() *ledgermodels.ConsentReceipt {
	receipt, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("MustBuild receipt: %v", err))
	}
	return receipt
}

// Quick helper functions for simple test cases

// NewTestReceipt creates a signed genesis receipt for the given subject.
func NewTestReceipt(signer *Signer, subjectID id.SubjectID) *ledgermodels.ConsentReceipt {
	return NewReceiptBuilder(signer).WithSubject(subjectID).MustBuild()
}

// NewTestRevocation creates a signed revocation for the given receipt hash.
func NewTestRevocation(signer *Signer, receiptHash id.ReceiptHash, revokedAt time.Time) *ledgermodels.RevocationRecord {
	record, err := ledgermodels.NewRevocation(receiptHash, revokedAt, signer.SignRevocation(receiptHash))
	if err != nil {
		panic(fmt.Sprintf("NewTestRevocation: %v", err))
	}
	return record
}

// ChainReceipts builds a valid n-link chain for the subject. Each link is
// issued one minute after the previous one so every receipt hashes uniquely.
func ChainReceipts(signer *Signer, subjectID id.SubjectID, n int) []*ledgermodels.ConsentReceipt {
	chain := make([]*ledgermodels.ConsentReceipt, 0, n)
	var prevHash id.ReceiptHash
	for i := 0; i < n; i++ {
		receipt := NewReceiptBuilder(signer).
			WithSubject(subjectID).
			IssuedAt(BaseTime.Add(time.Duration(i) * time.Minute)).
			WithPrevHash(prevHash).
			MustBuild()
		chain = append(chain, receipt)
		prevHash = receipt.Hash
	}
	return chain
}

// MustParseReceiptHash parses a receipt hash or panics. For tests only.
func MustParseReceiptHash(s string) id.ReceiptHash {
	hash, err := id.ParseReceiptHash(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseReceiptHash: %v", err))
	}
	return hash
}
