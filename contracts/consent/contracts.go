// Package consent defines stable contract types for cross-module consent boundaries.
package consent

import (
	"context"

	id "pactum/pkg/domain"
)

// Authorization reports which consent receipt authorized an operation.
// Scope carries the consented scope set at authorization time so callers
// can record what was actually permitted.
type Authorization struct {
	ReceiptHash id.ReceiptHash
	Scope       []string
}

// Checker defines the interface for consent enforcement across module
// boundaries. The ingest gate uses this interface to depend on ledger
// behavior without importing the ledger service package.
//
// Authorize resolves the subject's current consent (the latest receipt in
// the subject's chain, evaluated at call time) and grants authorization only
// when that consent is active, extractive, and covers every required scope.
// Error Contract:
//   - CodeConsentRequired when the subject has no receipt, or the current
//     consent is expired, revoked, or not extractive
//   - CodeScopeNotCovered when required scopes exceed the consented set
type Checker interface {
	Authorize(ctx context.Context, subjectID id.SubjectID, requiredScopes []string) (*Authorization, error)
}
