// Package seeder populates a development server with a small consent
// economy: registered parties, signed receipt chains, admitted and denied
// ingests, artifacts and reuse events. Runs against the in-memory stores so
// every boot starts from the same picture.
package seeder

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"time"

	artifactmodels "pactum/internal/artifact/models"
	ingestmodels "pactum/internal/ingest/models"
	ledgermodels "pactum/internal/ledger/models"
	partymodels "pactum/internal/party/models"
	reusemodels "pactum/internal/reuse/models"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/testutil"
)

// PartyRegistry registers demo parties.
type PartyRegistry interface {
	Register(ctx context.Context, kind partymodels.Kind, displayName string, publicKey ed25519.PublicKey) (*partymodels.Party, string, error)
}

// Ledger appends and revokes demo receipts.
type Ledger interface {
	Append(ctx context.Context, receipt *ledgermodels.ConsentReceipt, actorID id.GrantorID) (*ledgermodels.ConsentReceipt, error)
	Revoke(ctx context.Context, hash id.ReceiptHash, signature []byte, actorID id.GrantorID) (*ledgermodels.RevocationRecord, error)
}

// Gate runs demo ingests through the consent gate.
type Gate interface {
	Ingest(ctx context.Context, subjectID id.SubjectID, requiredScopes []string, extractive bool, actorID id.GrantorID) (*ingestmodels.IngestRecord, error)
}

// Artifacts advances demo artifacts through their lifecycle.
type Artifacts interface {
	Transition(ctx context.Context, artifactID id.ArtifactID, to artifactmodels.State, actorID id.GrantorID) (*artifactmodels.Artifact, error)
}

// Reuses logs demo reuse events.
type Reuses interface {
	LogReuse(ctx context.Context, artifactID id.ArtifactID, disclosed bool, actorID id.GrantorID) (*reusemodels.ReuseEvent, error)
}

// Seeder drives the services, not the stores, so every seeded receipt goes
// through real signature and chain verification.
type Seeder struct {
	parties   PartyRegistry
	ledger    Ledger
	gate      Gate
	artifacts Artifacts
	reuses    Reuses
	logger    *slog.Logger
}

// New creates a seeder over the assembled services.
func New(parties PartyRegistry, ledger Ledger, gate Gate, artifacts Artifacts, reuses Reuses, logger *slog.Logger) *Seeder {
	return &Seeder{
		parties:   parties,
		ledger:    ledger,
		gate:      gate,
		artifacts: artifacts,
		reuses:    reuses,
		logger:    logger,
	}
}

// grantor pairs a registered demo grantor with its signing key.
type grantor struct {
	id     id.GrantorID
	signer *testutil.Signer
}

// SeedAll populates the full demo dataset.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data")

	grantors, err := s.seedGrantors(ctx)
	if err != nil {
		return fmt.Errorf("seed grantors: %w", err)
	}

	subjects, err := s.seedSubjects(ctx)
	if err != nil {
		return fmt.Errorf("seed subjects: %w", err)
	}

	if err := s.seedLedger(ctx, grantors, subjects); err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}

	artifactIDs, err := s.seedIngests(ctx, grantors, subjects)
	if err != nil {
		return fmt.Errorf("seed ingests: %w", err)
	}

	if err := s.seedReuses(ctx, grantors, artifactIDs); err != nil {
		return fmt.Errorf("seed reuses: %w", err)
	}

	s.logger.Info("demo data seeded",
		"grantors", len(grantors),
		"subjects", len(subjects),
		"artifacts", len(artifactIDs),
	)
	return nil
}

func (s *Seeder) seedGrantors(ctx context.Context) ([]grantor, error) {
	names := []string{"Aster Insights", "Boreal Commons"}

	grantors := make([]grantor, 0, len(names))
	for _, name := range names {
		signer := testutil.NewSigner()
		party, _, err := s.parties.Register(ctx, partymodels.KindGrantor, name, signer.Public)
		if err != nil {
			return nil, err
		}
		grantors = append(grantors, grantor{id: id.GrantorID(party.ID), signer: signer})
		s.logger.Info("demo grantor registered", "grantor_id", party.ID, "name", name)
	}
	return grantors, nil
}

func (s *Seeder) seedSubjects(ctx context.Context) ([]id.SubjectID, error) {
	names := []string{"Ada Okafor", "Bram Halvorsen", "Chiyo Tanaka", "Dele Akinyemi"}

	subjects := make([]id.SubjectID, 0, len(names))
	for _, name := range names {
		party, _, err := s.parties.Register(ctx, partymodels.KindSubject, name, nil)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, id.SubjectID(party.ID))
	}
	return subjects, nil
}

// seedLedger builds one chain per consenting subject: an active two-link
// chain, a revoked grant, and an expired grant superseded by an active one.
// The last subject never consents.
func (s *Seeder) seedLedger(ctx context.Context, grantors []grantor, subjects []id.SubjectID) error {
	now := time.Now().UTC().Truncate(time.Second)
	g1, g2 := grantors[0], grantors[1]

	first := testutil.NewReceiptBuilder(g1.signer).
		WithSubject(subjects[0]).WithGrantor(g1.id).
		WithScope("analytics", "billing").
		IssuedAt(now.Add(-2 * time.Hour)).
		MustBuild()
	if _, err := s.ledger.Append(ctx, first, g1.id); err != nil {
		return err
	}
	extension := testutil.NewReceiptBuilder(g1.signer).
		WithSubject(subjects[0]).WithGrantor(g1.id).
		WithScope("analytics", "training").Extractive(true).
		IssuedAt(now.Add(-90 * time.Minute)).
		WithPrevHash(first.Hash).
		MustBuild()
	if _, err := s.ledger.Append(ctx, extension, g1.id); err != nil {
		return err
	}

	revoked := testutil.NewReceiptBuilder(g1.signer).
		WithSubject(subjects[1]).WithGrantor(g1.id).
		WithScope("analytics").Extractive(true).
		IssuedAt(now.Add(-3 * time.Hour)).
		MustBuild()
	if _, err := s.ledger.Append(ctx, revoked, g1.id); err != nil {
		return err
	}
	if _, err := s.ledger.Revoke(ctx, revoked.Hash, g1.signer.SignRevocation(revoked.Hash), g1.id); err != nil {
		return err
	}

	expired := testutil.NewReceiptBuilder(g2.signer).
		WithSubject(subjects[2]).WithGrantor(g2.id).
		WithScope("billing").
		IssuedAt(now.Add(-48 * time.Hour)).
		ExpiresAt(now.Add(-24 * time.Hour)).
		MustBuild()
	if _, err := s.ledger.Append(ctx, expired, g2.id); err != nil {
		return err
	}
	renewal := testutil.NewReceiptBuilder(g2.signer).
		WithSubject(subjects[2]).WithGrantor(g2.id).
		WithScope("billing", "training").Extractive(true).
		IssuedAt(now.Add(-20 * time.Hour)).
		WithPrevHash(expired.Hash).
		MustBuild()
	if _, err := s.ledger.Append(ctx, renewal, g2.id); err != nil {
		return err
	}

	return nil
}

// seedIngests admits consented ingests, mints artifacts for the extractive
// ones, and records two denials so the audit trail shows the gate refusing.
func (s *Seeder) seedIngests(ctx context.Context, grantors []grantor, subjects []id.SubjectID) ([]id.ArtifactID, error) {
	g1, g2 := grantors[0], grantors[1]
	var artifactIDs []id.ArtifactID

	record, err := s.gate.Ingest(ctx, subjects[0], []string{"training"}, true, g1.id)
	if err != nil {
		return nil, err
	}
	artifactIDs = append(artifactIDs, *record.ArtifactID)

	if _, err := s.gate.Ingest(ctx, subjects[0], []string{"analytics"}, false, g1.id); err != nil {
		return nil, err
	}

	// Revoked chain: the gate must refuse.
	if err := expectDenied(s.gate.Ingest(ctx, subjects[1], []string{"analytics"}, true, g1.id)); err != nil {
		return nil, err
	}

	record, err = s.gate.Ingest(ctx, subjects[2], []string{"training"}, true, g2.id)
	if err != nil {
		return nil, err
	}
	artifactIDs = append(artifactIDs, *record.ArtifactID)

	// Scopeless non-extractive collection passes without consent.
	if _, err := s.gate.Ingest(ctx, subjects[3], nil, false, g2.id); err != nil {
		return nil, err
	}
	// The same subject has no receipts, so extraction is refused.
	if err := expectDenied(s.gate.Ingest(ctx, subjects[3], []string{"analytics"}, true, g2.id)); err != nil {
		return nil, err
	}

	return artifactIDs, nil
}

// seedReuses exercises the artifact lifecycle: the first artifact is reused
// twice (once undisclosed) and published; the second is marked used by hand
// and reused once.
func (s *Seeder) seedReuses(ctx context.Context, grantors []grantor, artifactIDs []id.ArtifactID) error {
	g1, g2 := grantors[0], grantors[1]

	if _, err := s.reuses.LogReuse(ctx, artifactIDs[0], true, g1.id); err != nil {
		return err
	}
	if _, err := s.reuses.LogReuse(ctx, artifactIDs[0], false, g1.id); err != nil {
		return err
	}
	if _, err := s.artifacts.Transition(ctx, artifactIDs[0], artifactmodels.StatePublished, g1.id); err != nil {
		return err
	}

	if _, err := s.artifacts.Transition(ctx, artifactIDs[1], artifactmodels.StateUsed, g2.id); err != nil {
		return err
	}
	if _, err := s.reuses.LogReuse(ctx, artifactIDs[1], true, g2.id); err != nil {
		return err
	}

	return nil
}

// expectDenied swallows the consent denial the scenario is built to produce
// and fails on anything else.
func expectDenied(_ *ingestmodels.IngestRecord, err error) error {
	if err == nil {
		return fmt.Errorf("expected the consent gate to deny")
	}
	if !dErrors.HasCode(err, dErrors.CodeConsentRequired) {
		return err
	}
	return nil
}
