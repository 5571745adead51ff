package models

import (
	"slices"
	"time"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
)

// Audit event decisions
const (
	AuditDecisionCreated      = "created"
	AuditDecisionTransitioned = "transitioned"
	AuditDecisionAttributed   = "attributed"
)

// State is the lifecycle state of an artifact.
type State string

const (
	StateGenerated State = "generated"
	StateUsed      State = "used"
	StatePublished State = "published"
	StateArchived  State = "archived"
)

// AllStates lists the lifecycle states in flow order.
var AllStates = []State{StateGenerated, StateUsed, StatePublished, StateArchived}

// IsValid checks if the state is one of the supported enum values.
func (s State) IsValid() bool {
	switch s {
	case StateGenerated, StateUsed, StatePublished, StateArchived:
		return true
	}
	return false
}

// transitions is the full state machine. Archived is terminal.
var transitions = map[State][]State{
	StateGenerated: {StateUsed, StateArchived},
	StateUsed:      {StatePublished, StateArchived},
	StatePublished: {StateArchived},
	StateArchived:  {},
}

// CanTransitionTo reports whether the move is allowed.
func (s State) CanTransitionTo(to State) bool {
	return slices.Contains(transitions[s], to)
}

// Artifact is a derived output attributed to the subjects whose data fed it.
// Only identifiers are stored, never content.
type Artifact struct {
	ID    id.ArtifactID
	State State
	// EverPublished is permanent once the artifact reaches published, even
	// after archiving.
	EverPublished bool
	CreatedAt     time.Time
	// Attributions lists source subjects in attribution order.
	Attributions []id.SubjectID
}

// NewArtifact constructs an artifact in the generated state.
func NewArtifact(artifactID id.ArtifactID, now time.Time) (*Artifact, error) {
	if artifactID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "artifact ID required")
	}
	return &Artifact{
		ID:        artifactID,
		State:     StateGenerated,
		CreatedAt: now,
	}, nil
}

// TransitionTo moves the artifact along the state machine. Reaching
// published marks EverPublished permanently.
func (a *Artifact) TransitionTo(to State) error {
	if !to.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown artifact state")
	}
	if !a.State.CanTransitionTo(to) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"cannot transition artifact from "+string(a.State)+" to "+string(to))
	}
	a.State = to
	if to == StatePublished {
		a.EverPublished = true
	}
	return nil
}

// Attribute adds a source subject. Repeat attributions are no-ops; the
// return reports whether the subject was newly added.
func (a *Artifact) Attribute(subjectID id.SubjectID) bool {
	if slices.Contains(a.Attributions, subjectID) {
		return false
	}
	a.Attributions = append(a.Attributions, subjectID)
	return true
}

// IsAttributed reports whether at least one source subject is recorded.
func (a *Artifact) IsAttributed() bool {
	return len(a.Attributions) > 0
}
