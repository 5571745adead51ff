package models

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	pstrings "pactum/pkg/platform/strings"
)

// Audit event actions
const (
	AuditActionReceiptAppended    = "receipt_appended"
	AuditActionReceiptRevoked     = "receipt_revoked"
	AuditActionAppendRejected     = "append_rejected"
	AuditActionRevocationRejected = "revocation_rejected"
	AuditActionChainVerified      = "chain_verified"
)

// Audit event decisions
const (
	AuditDecisionAppended = "appended"
	AuditDecisionRevoked  = "revoked"
	AuditDecisionRejected = "rejected"
	AuditDecisionValid    = "valid"
	AuditDecisionBroken   = "broken"
)

// Domain separation prefixes for signing payloads. Versioned so a future
// canonical-form change cannot make old signatures verify against new bytes.
const (
	receiptSigningPrefix    = "pactum.receipt.v1:"
	revocationSigningPrefix = "pactum.revocation.v1:"
)

// ConsentReceipt is an immutable, grantor-signed record of scoped consent.
//
// # Chain Invariant
//
// Every receipt belongs to exactly one subject chain: PrevHash is the hash of
// the subject's previous receipt, or "" for the subject's first. Receipts are
// never mutated or deleted after append; a RevocationRecord referencing the
// hash is the only way to supersede one. Hash identity covers the canonical
// signing bytes, so two receipts with identical content are the same receipt.
type ConsentReceipt struct {
	Hash           id.ReceiptHash
	SubjectID      id.SubjectID
	GrantorID      id.GrantorID
	Scope          []string
	Extractive     bool
	IssuedAt       time.Time
	ExpiresAt      *time.Time
	PrevHash       id.ReceiptHash
	Signature      []byte
	AnchorPosition int64
}

// NewReceipt builds a ConsentReceipt with domain invariant checks and the
// canonical scope form (trimmed, lowercased, deduplicated, sorted). The hash
// is computed from the canonical signing bytes; the signature is carried as
// given and verified separately against the grantor's registered key.
func NewReceipt(subjectID id.SubjectID, grantorID id.GrantorID, scope []string, extractive bool, issuedAt time.Time, expiresAt *time.Time, prevHash id.ReceiptHash, signature []byte) (*ConsentReceipt, error) {
	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject ID required")
	}
	if grantorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "grantor ID required")
	}
	// Empty scope is legal: it records extractive consent with no named uses.
	// The canonical form is a non-nil slice so the signing bytes always carry
	// "scope":[] rather than null.
	canonical := pstrings.SortedSet(scope)
	if canonical == nil {
		canonical = []string{}
	}
	if issuedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issue time required")
	}
	if !issuedAt.Equal(issuedAt.Truncate(time.Second)) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issue time must have whole-second precision")
	}
	if expiresAt != nil {
		if !expiresAt.Equal(expiresAt.Truncate(time.Second)) {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "expiry must have whole-second precision")
		}
		if !expiresAt.After(issuedAt) {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "expiry must be after issue time")
		}
	}
	if len(signature) != ed25519.SignatureSize {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("signature must be %d bytes", ed25519.SignatureSize))
	}

	receipt := &ConsentReceipt{
		SubjectID:  subjectID,
		GrantorID:  grantorID,
		Scope:      canonical,
		Extractive: extractive,
		IssuedAt:   issuedAt.UTC(),
		PrevHash:   prevHash,
		Signature:  signature,
	}
	if expiresAt != nil {
		expiry := expiresAt.UTC()
		receipt.ExpiresAt = &expiry
	}

	hash, err := receipt.ComputeHash()
	if err != nil {
		return nil, err
	}
	receipt.Hash = hash
	return receipt, nil
}

// signingEnvelope fixes the canonical field order for receipt signing bytes.
// A struct (never a map) keeps encoding/json output deterministic.
type signingEnvelope struct {
	SubjectID  string   `json:"subject_id"`
	GrantorID  string   `json:"grantor_id"`
	Scope      []string `json:"scope"`
	Extractive bool     `json:"extractive"`
	IssuedAt   string   `json:"issued_at"`
	ExpiresAt  *string  `json:"expires_at,omitempty"`
	PrevHash   string   `json:"prev_hash"`
}

// SigningBytes returns the canonical byte sequence the grantor signs:
// the domain prefix followed by deterministic JSON of every content field
// except the signature. Timestamps are rendered RFC3339 UTC at whole-second
// precision so receipts survive a database round trip byte-for-byte.
func (r *ConsentReceipt) SigningBytes() ([]byte, error) {
	envelope := signingEnvelope{
		SubjectID:  r.SubjectID.String(),
		GrantorID:  r.GrantorID.String(),
		Scope:      r.Scope,
		Extractive: r.Extractive,
		IssuedAt:   r.IssuedAt.UTC().Format(time.RFC3339),
		PrevHash:   string(r.PrevHash),
	}
	if r.ExpiresAt != nil {
		expiry := r.ExpiresAt.UTC().Format(time.RFC3339)
		envelope.ExpiresAt = &expiry
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode signing envelope")
	}
	return append([]byte(receiptSigningPrefix), payload...), nil
}

// ComputeHash derives the receipt hash: hex SHA-256 of the signing bytes.
func (r *ConsentReceipt) ComputeHash() (id.ReceiptHash, error) {
	payload, err := r.SigningBytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return id.ReceiptHash(hex.EncodeToString(sum[:])), nil
}

// VerifySignature checks the receipt signature against the grantor's key.
func (r *ConsentReceipt) VerifySignature(publicKey ed25519.PublicKey) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return dErrors.New(dErrors.CodeInvalidSignature, "grantor key has invalid size")
	}
	payload, err := r.SigningBytes()
	if err != nil {
		return err
	}
	if !ed25519.Verify(publicKey, payload, r.Signature) {
		return dErrors.New(dErrors.CodeInvalidSignature, "signature does not verify against grantor key")
	}
	return nil
}

// IsGenesis reports whether this receipt starts its subject's chain.
func (r *ConsentReceipt) IsGenesis() bool {
	return r.PrevHash == ""
}

// Status derives the consent lifecycle state at the provided instant.
// Revocation wins over expiration; expiry is strict (at must be after
// ExpiresAt). Future-dated revocations do not revoke yet.
func (r *ConsentReceipt) Status(revocation *RevocationRecord, at time.Time) Status {
	if revocation != nil && !revocation.RevokedAt.After(at) {
		return StatusRevoked
	}
	if r.ExpiresAt != nil && at.After(*r.ExpiresAt) {
		return StatusExpired
	}
	return StatusActive
}

// CoversScopes reports whether every required scope is in the receipt's
// scope set. Required scopes are compared in canonical form.
func (r *ConsentReceipt) CoversScopes(required []string) bool {
	if len(required) == 0 {
		return true
	}
	granted := make(map[string]struct{}, len(r.Scope))
	for _, s := range r.Scope {
		granted[s] = struct{}{}
	}
	for _, s := range pstrings.SortedSet(required) {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// RevocationRecord terminally supersedes a receipt. At most one exists per
// receipt hash; RevokedAt is assigned by the server, never by the caller.
type RevocationRecord struct {
	ReceiptHash id.ReceiptHash
	RevokedAt   time.Time
	Signature   []byte
}

// NewRevocation builds a RevocationRecord with invariant checks.
func NewRevocation(receiptHash id.ReceiptHash, revokedAt time.Time, signature []byte) (*RevocationRecord, error) {
	if receiptHash.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "receipt hash required")
	}
	if revokedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "revocation time required")
	}
	if len(signature) != ed25519.SignatureSize {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("signature must be %d bytes", ed25519.SignatureSize))
	}
	return &RevocationRecord{
		ReceiptHash: receiptHash,
		RevokedAt:   revokedAt.UTC(),
		Signature:   signature,
	}, nil
}

// RevocationSigningBytes returns the byte sequence the original grantor signs
// to revoke a receipt. The server assigns RevokedAt, so the payload covers
// only the domain prefix and the receipt hash.
func RevocationSigningBytes(receiptHash id.ReceiptHash) []byte {
	return append([]byte(revocationSigningPrefix), receiptHash.String()...)
}

// VerifyRevocationSignature checks a revocation signature against the
// original grantor's key.
func VerifyRevocationSignature(receiptHash id.ReceiptHash, signature []byte, publicKey ed25519.PublicKey) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return dErrors.New(dErrors.CodeInvalidSignature, "grantor key has invalid size")
	}
	if !ed25519.Verify(publicKey, RevocationSigningBytes(receiptHash), signature) {
		return dErrors.New(dErrors.CodeInvalidSignature, "signature does not verify against grantor key")
	}
	return nil
}
