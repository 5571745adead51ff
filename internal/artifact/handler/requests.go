package handler

import (
	"strings"

	"pactum/internal/artifact/models"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/validation"
)

// TransitionRequest moves an artifact to a new lifecycle state. Whether the
// move is legal from the current state is decided by the state machine, not
// here.
type TransitionRequest struct {
	To string `json:"to" validate:"required,notblank"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *TransitionRequest) Normalize() {
	if r == nil {
		return
	}
	r.To = strings.ToLower(strings.TrimSpace(r.To))
}

// Validate checks that the request is well-formed.
func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ToState returns the requested target state.
func (r *TransitionRequest) ToState() models.State {
	return models.State(r.To)
}

// AttributeRequest records a source subject on an artifact.
type AttributeRequest struct {
	SubjectID string `json:"subject_id" validate:"required,uuid"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *AttributeRequest) Normalize() {
	if r == nil {
		return
	}
	r.SubjectID = strings.TrimSpace(r.SubjectID)
}

// Validate checks that the request is well-formed.
func (r *AttributeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ParseSubjectID returns the typed subject ID.
func (r *AttributeRequest) ParseSubjectID() (id.SubjectID, error) {
	return id.ParseSubjectID(r.SubjectID)
}
