package handler

import (
	"strings"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/validation"
)

// IngestRequest declares a data ingest for a subject. Whether the ingest
// needs consent cover is decided by the gate from the scopes and the
// extractive flag, not here.
type IngestRequest struct {
	SubjectID      string   `json:"subject_id" validate:"required,uuid"`
	RequiredScopes []string `json:"required_scopes" validate:"omitempty,dive,notblank"`
	Extractive     bool     `json:"extractive"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *IngestRequest) Normalize() {
	if r == nil {
		return
	}
	r.SubjectID = strings.TrimSpace(r.SubjectID)
	for i, scope := range r.RequiredScopes {
		r.RequiredScopes[i] = strings.TrimSpace(scope)
	}
}

// Validate checks that the request is well-formed.
func (r *IngestRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ParseSubjectID returns the typed subject ID.
func (r *IngestRequest) ParseSubjectID() (id.SubjectID, error) {
	return id.ParseSubjectID(r.SubjectID)
}
