package handler

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"

	"pactum/internal/party/models"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/validation"
)

// RegisterPartyRequest registers a subject or grantor. Grantors supply their
// Ed25519 public key in standard base64; subjects must not.
type RegisterPartyRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=subject grantor"`
	DisplayName string `json:"display_name" validate:"required,notblank,max=128"`
	PublicKey   string `json:"public_key,omitempty" validate:"omitempty,ed25519key"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *RegisterPartyRequest) Normalize() {
	if r == nil {
		return
	}
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.PublicKey = strings.TrimSpace(r.PublicKey)
}

// Validate checks that the request is well-formed. Kind-dependent key rules
// live in the domain model; this only checks shape.
func (r *RegisterPartyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// DecodeKey returns the decoded public key, or nil when none was supplied.
func (r *RegisterPartyRequest) DecodeKey() (ed25519.PublicKey, error) {
	if r.PublicKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(r.PublicKey)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "public_key must be base64 encoded")
	}
	return key, nil
}

// ToKind converts the wire kind to its domain form.
func (r *RegisterPartyRequest) ToKind() models.Kind {
	return models.Kind(r.Kind)
}
