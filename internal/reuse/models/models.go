package models

import (
	"time"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
)

// Audit decision outcomes for reuse events.
const (
	AuditDecisionDisclosed = "disclosed"
	AuditDecisionSilent    = "silent"
)

// ReuseEvent records one reuse of an artifact. Disclosed reuses carry
// attribution back to the source subjects; silent reuses do not. Both are
// logged, the distinction only shows up in reciprocity reporting.
type ReuseEvent struct {
	ID         id.ReuseID
	ArtifactID id.ArtifactID
	Disclosed  bool
	OccurredAt time.Time
}

// NewReuseEvent builds a reuse event. The artifact does not have to exist in
// the registry: reuse of unknown artifacts is exactly the signal the log is
// there to catch.
func NewReuseEvent(reuseID id.ReuseID, artifactID id.ArtifactID, disclosed bool, now time.Time) (*ReuseEvent, error) {
	if reuseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reuse ID is required")
	}
	if artifactID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "artifact ID is required")
	}
	return &ReuseEvent{
		ID:         reuseID,
		ArtifactID: artifactID,
		Disclosed:  disclosed,
		OccurredAt: now,
	}, nil
}

// ReuseCounts summarizes the reuse log for reciprocity reporting.
type ReuseCounts struct {
	Total  int64
	Silent int64
}
