package handler

import (
	"strings"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/validation"
)

// LogReuseRequest appends one reuse of an artifact to the disclosure log.
type LogReuseRequest struct {
	ArtifactID string `json:"artifact_id" validate:"required,uuid"`
	Disclosed  bool   `json:"disclosed"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *LogReuseRequest) Normalize() {
	if r == nil {
		return
	}
	r.ArtifactID = strings.TrimSpace(r.ArtifactID)
}

// Validate checks that the request is well-formed.
func (r *LogReuseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ParseArtifactID returns the typed artifact ID.
func (r *LogReuseRequest) ParseArtifactID() (id.ArtifactID, error) {
	return id.ParseArtifactID(r.ArtifactID)
}
