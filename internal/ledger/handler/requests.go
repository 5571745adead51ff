package handler

import (
	"encoding/base64"
	"strings"
	"time"

	"pactum/internal/ledger/models"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/validation"
)

// AppendReceiptRequest carries a grantor-signed receipt for ledger append.
// The signature is standard base64; timestamps are RFC3339.
type AppendReceiptRequest struct {
	SubjectID  string   `json:"subject_id" validate:"required,uuid"`
	GrantorID  string   `json:"grantor_id" validate:"required,uuid"`
	Scope      []string `json:"scope"`
	Extractive bool     `json:"extractive"`
	IssuedAt   string   `json:"issued_at" validate:"required"`
	ExpiresAt  *string  `json:"expires_at,omitempty"`
	PrevHash   string   `json:"prev_hash"`
	Signature  string   `json:"signature" validate:"required,base64"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *AppendReceiptRequest) Normalize() {
	if r == nil {
		return
	}
	r.SubjectID = strings.TrimSpace(r.SubjectID)
	r.GrantorID = strings.TrimSpace(r.GrantorID)
	r.IssuedAt = strings.TrimSpace(r.IssuedAt)
	r.PrevHash = strings.TrimSpace(r.PrevHash)
	r.Signature = strings.TrimSpace(r.Signature)
	if r.ExpiresAt != nil {
		trimmed := strings.TrimSpace(*r.ExpiresAt)
		if trimmed == "" {
			r.ExpiresAt = nil
		} else {
			r.ExpiresAt = &trimmed
		}
	}
}

// Validate checks that the request is well-formed.
func (r *AppendReceiptRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ToReceipt converts the request into a domain receipt, decoding timestamps,
// the previous hash, and the signature. Chain position and signature validity
// are checked by the service, not here.
func (r *AppendReceiptRequest) ToReceipt() (*models.ConsentReceipt, error) {
	subjectID, err := id.ParseSubjectID(r.SubjectID)
	if err != nil {
		return nil, err
	}
	grantorID, err := id.ParseGrantorID(r.GrantorID)
	if err != nil {
		return nil, err
	}

	issuedAt, err := time.Parse(time.RFC3339, r.IssuedAt)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "issued_at must be RFC3339")
	}

	var expiresAt *time.Time
	if r.ExpiresAt != nil {
		expiry, err := time.Parse(time.RFC3339, *r.ExpiresAt)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "expires_at must be RFC3339")
		}
		expiresAt = &expiry
	}

	var prevHash id.ReceiptHash
	if r.PrevHash != "" {
		prevHash, err = id.ParseReceiptHash(r.PrevHash)
		if err != nil {
			return nil, err
		}
	}

	signature, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "signature must be base64 encoded")
	}

	return models.NewReceipt(subjectID, grantorID, r.Scope, r.Extractive, issuedAt, expiresAt, prevHash, signature)
}

// RevokeReceiptRequest carries the grantor's signature over the revocation
// payload for the receipt named in the URL.
type RevokeReceiptRequest struct {
	Signature string `json:"signature" validate:"required,base64"`
}

// Normalize applies business defaults and sanitizes inputs.
func (r *RevokeReceiptRequest) Normalize() {
	if r == nil {
		return
	}
	r.Signature = strings.TrimSpace(r.Signature)
}

// Validate checks that the request is well-formed.
func (r *RevokeReceiptRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// DecodeSignature returns the raw signature bytes.
func (r *RevokeReceiptRequest) DecodeSignature() ([]byte, error) {
	signature, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "signature must be base64 encoded")
	}
	return signature, nil
}
