package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrDuplicateReceipt: receipt content hash already present in the ledger
// - ErrUnknownReceipt: referenced receipt hash absent from the ledger
// - ErrAlreadyRevoked: receipt already carries its terminal revocation record
// - ErrInvalidChain: prev_hash does not match the subject's current chain head
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrConflict: uniqueness constraint hit (party name, anchor position)
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrDuplicateReceipt = errors.New("duplicate receipt")
	ErrUnknownReceipt   = errors.New("unknown receipt")
	ErrAlreadyRevoked   = errors.New("already revoked")
	ErrInvalidChain     = errors.New("invalid chain")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnavailable      = errors.New("unavailable")
)
