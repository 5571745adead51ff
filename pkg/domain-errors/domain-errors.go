// Package domainerrors defines the coded errors that flow from stores and
// services up to the HTTP layer, where each code maps onto one status.
// Codes name what went wrong in ledger terms, never in HTTP terms.
package domainerrors

import "errors"

// Code is a stable, transport-agnostic error category.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"

	// Ledger error codes. Receipts are addressed by content hash; these codes
	// cover the append/revoke/status contracts.
	CodeDuplicateReceipt Code = "duplicate_receipt" // Identical receipt content already appended
	CodeUnknownReceipt   Code = "unknown_receipt"   // Receipt hash not present in the ledger
	CodeInvalidSignature Code = "invalid_signature" // Signature does not verify against the grantor key
	CodeAlreadyRevoked   Code = "already_revoked"   // Receipt already carries its terminal revocation
	CodeInvalidChain     Code = "invalid_chain"     // prev_hash does not extend the subject's chain head

	// Consent gate error codes.
	CodeConsentRequired Code = "consent_required"  // No active extractive consent for the subject
	CodeScopeNotCovered Code = "scope_not_covered" // Required scopes exceed the consented scope set

	// Artifact lifecycle error codes.
	CodeInvalidTransition Code = "invalid_transition" // Disallowed artifact state transition
)

// Error carries a code alongside the message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by code, so errors.Is(err, New(CodeUnknownReceipt, ""))
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New builds a domain error from a code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap annotates err with msg. An inner domain code wins over the one
// passed here, so a store-level unknown_receipt keeps its code no matter
// how many service layers re-wrap it.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err unwraps to a domain error with the code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
