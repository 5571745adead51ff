package models

import (
	"time"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	pstrings "pactum/pkg/platform/strings"
)

// Audit decision outcomes for ingest events.
const (
	AuditDecisionAdmitted = "admitted"
	AuditDecisionDenied   = "denied"
)

// IngestRecord is the durable trace of a data ingest attempt that was
// admitted through the consent gate.
type IngestRecord struct {
	ID             id.IngestID
	SubjectID      id.SubjectID
	RequiredScopes []string
	Extractive     bool
	// ReceiptHash references the consent receipt that authorized the
	// ingest. Empty when the ingest was admitted without consulting
	// consent.
	ReceiptHash id.ReceiptHash
	// ArtifactID references the artifact minted for an extractive ingest.
	// Nil for non-extractive ingests.
	ArtifactID *id.ArtifactID
	OccurredAt time.Time
}

// NewIngestRecord builds an admitted ingest record. Required scopes are
// canonicalized to a sorted, deduplicated set so stored records compare
// stably.
func NewIngestRecord(ingestID id.IngestID, subjectID id.SubjectID, requiredScopes []string, extractive bool, now time.Time) (*IngestRecord, error) {
	if ingestID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ingest ID is required")
	}
	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject ID is required")
	}
	return &IngestRecord{
		ID:             ingestID,
		SubjectID:      subjectID,
		RequiredScopes: pstrings.SortedSet(requiredScopes),
		Extractive:     extractive,
		OccurredAt:     now,
	}, nil
}

// NeedsConsent reports whether an ingest with these parameters must be
// authorized by the subject's current consent.
func NeedsConsent(requiredScopes []string, extractive bool) bool {
	return extractive || len(requiredScopes) > 0
}
