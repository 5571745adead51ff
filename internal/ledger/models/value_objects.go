package models

import (
	"time"

	id "pactum/pkg/domain"
)

// Status represents the derived lifecycle state of a consent receipt.
// It is never stored; Status values are pure functions of
// (receipt, revocation, at).
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusExpired || s == StatusRevoked
}

// Chain break reasons reported by verification.
const (
	BreakHashMismatch     = "hash_mismatch"     // stored hash differs from the recomputed one
	BreakLinkMismatch     = "link_mismatch"     // prev_hash does not point at the prior receipt
	BreakSignatureInvalid = "signature_invalid" // signature fails against the grantor key
	BreakGrantorUnknown   = "grantor_unknown"   // signing grantor is not registered
	BreakAnchorMissing    = "anchor_unassigned" // receipt never received an anchor position
)

// ChainReport is the result of walking one subject's receipt chain from
// genesis to head, recomputing every hash and verifying every signature.
type ChainReport struct {
	SubjectID id.SubjectID
	Length    int
	Valid     bool
	// BrokenAt is the hash of the first receipt that failed verification;
	// empty when the chain is valid.
	BrokenAt id.ReceiptHash
	Reason   string
}

// LedgerReport aggregates per-subject chain reports for a full-ledger sweep.
type LedgerReport struct {
	Subjects int
	Receipts int
	Valid    bool
	// Broken lists the reports of every subject whose chain failed, in no
	// particular order (subject walks run concurrently).
	Broken []*ChainReport
}

// StatusResult reports a receipt's derived status at a specific instant.
// RevokedAt is set only when Status is StatusRevoked.
type StatusResult struct {
	ReceiptHash id.ReceiptHash
	Status      Status
	At          time.Time
	RevokedAt   *time.Time
}

// HeadState pairs a subject's chain head with its revocation, if any.
// Status derivation needs both, so stores return them together.
type HeadState struct {
	Receipt    *ConsentReceipt
	Revocation *RevocationRecord
}

// ReceiptCounts reports ledger-wide totals for the reciprocity report.
// Anchored should always equal Total; a difference indicates a torn append.
type ReceiptCounts struct {
	Total    int64
	Anchored int64
}
