package models

import (
	"crypto/ed25519"
	"fmt"
	"strings"
	"time"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
)

// Audit event decisions
const (
	AuditDecisionRegistered = "registered"
	AuditDecisionRejected   = "rejected"
)

// Kind distinguishes data subjects from grantors. Subjects are the parties
// whose data and consent are at stake; grantors hold Ed25519 signing keys and
// issue the receipts recorded in the ledger.
type Kind string

const (
	KindSubject Kind = "subject"
	KindGrantor Kind = "grantor"
)

// IsValid checks if the kind is one of the supported enum values.
func (k Kind) IsValid() bool {
	return k == KindSubject || k == KindGrantor
}

// Party is a registered participant. The same UUID doubles as a SubjectID or
// GrantorID elsewhere in the system depending on the party's kind.
type Party struct {
	ID          id.PartyID
	Kind        Kind
	DisplayName string
	// PublicKey is the grantor's Ed25519 verification key. Nil for subjects,
	// which never sign anything.
	PublicKey ed25519.PublicKey
	// SecretHash is the bcrypt hash of the grantor's API secret. The
	// cleartext secret leaves the service exactly once, at registration.
	SecretHash string
	CreatedAt  time.Time
}

func (p *Party) IsGrantor() bool {
	return p.Kind == KindGrantor
}

func (p *Party) IsSubject() bool {
	return p.Kind == KindSubject
}

// NewParty validates registration invariants and constructs a party.
// Grantors must carry a full Ed25519 public key and a secret hash; subjects
// must carry neither.
func NewParty(partyID id.PartyID, kind Kind, displayName string, publicKey ed25519.PublicKey, secretHash string, now time.Time) (*Party, error) {
	if partyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "party ID required")
	}
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "kind must be subject or grantor")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "display name cannot be empty")
	}
	if len(displayName) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "display name must be 128 characters or less")
	}

	switch kind {
	case KindGrantor:
		if len(publicKey) != ed25519.PublicKeySize {
			return nil, dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("grantor public key must be %d bytes", ed25519.PublicKeySize))
		}
		if secretHash == "" {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "grantor secret hash required")
		}
	case KindSubject:
		if len(publicKey) != 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "subjects do not hold signing keys")
		}
		if secretHash != "" {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "subjects do not hold API secrets")
		}
	}

	return &Party{
		ID:          partyID,
		Kind:        kind,
		DisplayName: displayName,
		PublicKey:   publicKey,
		SecretHash:  secretHash,
		CreatedAt:   now,
	}, nil
}
