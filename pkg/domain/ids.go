// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "pactum/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing SubjectID where GrantorID is expected.
type (
	PartyID    uuid.UUID
	SubjectID  uuid.UUID
	GrantorID  uuid.UUID
	ArtifactID uuid.UUID
	IngestID   uuid.UUID
	ReuseID    uuid.UUID
)

// ReceiptHash addresses a consent receipt by the hex SHA-256 of its canonical
// signing bytes. It is the ledger's primary key, not a database surrogate.
type ReceiptHash string

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParsePartyID(s string) (PartyID, error) {
	id, err := parseUUID(s, "party ID")
	return PartyID(id), err
}

func ParseSubjectID(s string) (SubjectID, error) {
	id, err := parseUUID(s, "subject ID")
	return SubjectID(id), err
}

func ParseGrantorID(s string) (GrantorID, error) {
	id, err := parseUUID(s, "grantor ID")
	return GrantorID(id), err
}

func ParseArtifactID(s string) (ArtifactID, error) {
	id, err := parseUUID(s, "artifact ID")
	return ArtifactID(id), err
}

func ParseIngestID(s string) (IngestID, error) {
	id, err := parseUUID(s, "ingest ID")
	return IngestID(id), err
}

func ParseReuseID(s string) (ReuseID, error) {
	id, err := parseUUID(s, "reuse ID")
	return ReuseID(id), err
}

// ParseReceiptHash validates the 64-character lowercase hex form produced by
// the ledger. Uppercase input is rejected rather than folded so the stored
// and requested forms always compare byte-for-byte.
func ParseReceiptHash(s string) (ReceiptHash, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "receipt hash cannot be empty")
	}
	if len(s) != 64 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "receipt hash must be 64 hex characters")
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", dErrors.New(dErrors.CodeInvalidInput, "receipt hash must be lowercase hex")
		}
	}
	return ReceiptHash(s), nil
}

// String methods - for logging and debugging.

func (id PartyID) String() string    { return uuid.UUID(id).String() }
func (id SubjectID) String() string  { return uuid.UUID(id).String() }
func (id GrantorID) String() string  { return uuid.UUID(id).String() }
func (id ArtifactID) String() string { return uuid.UUID(id).String() }
func (id IngestID) String() string   { return uuid.UUID(id).String() }
func (id ReuseID) String() string    { return uuid.UUID(id).String() }
func (h ReceiptHash) String() string { return string(h) }

// IsNil checks - used for service-layer validation.

func (id PartyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SubjectID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id GrantorID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ArtifactID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id IngestID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ReuseID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (h ReceiptHash) IsNil() bool { return h == "" }

// parseUUID is the shared validation logic.
// Note: Nil UUIDs are allowed here. Use IsNil() at the service layer for
// business validation, which allows store lookups to return proper
// "not found" errors for consistency.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
