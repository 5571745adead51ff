package service

import (
	"context"
	"crypto/ed25519"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pactum/internal/party/models"
	"pactum/internal/platform/metrics"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/platform/clientinfo"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/requestcontext"
	"pactum/pkg/secrets"
)

// Store persists party registrations.
// Error Contract:
// - Create returns sentinel.ErrConflict when a grantor's display name is taken
// - FindByID returns sentinel.ErrNotFound when the party does not exist
type Store interface {
	Create(ctx context.Context, party *models.Party) error
	FindByID(ctx context.Context, partyID id.PartyID) (*models.Party, error)
	CountSubjects(ctx context.Context) (int64, error)
}

// AuditPublisher emits audit events for party registrations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the party registry: registration, lookup, and the directory
// queries the ledger relies on to resolve grantor keys and confirm subject
// registration.
type Service struct {
	parties Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithAuditor sets the audit publisher for registrations.
func WithAuditor(auditor AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates the party service.
// Panics if the store is nil - fail fast at startup.
func New(parties Store, opts ...Option) *Service {
	if parties == nil {
		panic("service.New: party store is required")
	}
	s := &Service{parties: parties}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a party. For grantors it generates a one-time API secret
// and returns its cleartext alongside the party; only the bcrypt hash is
// stored, so the secret cannot be recovered later. Subjects get no secret.
func (s *Service) Register(ctx context.Context, kind models.Kind, displayName string, publicKey ed25519.PublicKey) (*models.Party, string, error) {
	var secret, secretHash string
	if kind == models.KindGrantor {
		var err error
		secret, err = secrets.Generate()
		if err != nil {
			return nil, "", err
		}
		secretHash, err = secrets.Hash(secret)
		if err != nil {
			return nil, "", err
		}
	}

	party, err := models.NewParty(
		id.PartyID(uuid.New()),
		kind,
		displayName,
		publicKey,
		secretHash,
		requestcontext.Now(ctx).UTC(),
	)
	if err != nil {
		return nil, "", err
	}

	if cerr := s.parties.Create(ctx, party); cerr != nil {
		if errors.Is(cerr, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "grantor display name already registered")
		}
		return nil, "", dErrors.Wrap(cerr, dErrors.CodeInternal, "create party")
	}

	event := audit.Event{
		Category:  audit.EventPartyRegistered.Category(),
		Timestamp: time.Now().UTC(),
		Subject:   party.ID.String(),
		Action:    string(audit.EventPartyRegistered),
		Decision:  models.AuditDecisionRegistered,
		RequestID: requestcontext.RequestID(ctx),
	}
	if party.IsSubject() {
		event.SubjectID = id.SubjectID(party.ID)
	}
	s.emitAudit(ctx, event)

	if s.metrics != nil {
		s.metrics.IncrementPartiesRegistered(string(party.Kind))
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "party registered",
			"party_id", party.ID,
			"kind", party.Kind,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return party, secret, nil
}

// Get returns a registered party by ID.
func (s *Service) Get(ctx context.Context, partyID id.PartyID) (*models.Party, error) {
	if partyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "party ID required")
	}
	party, err := s.parties.FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "party not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find party")
	}
	return party, nil
}

// GrantorKey resolves a grantor's Ed25519 verification key. A party that is
// registered but is not a grantor reads as not found: only grantors hold
// keys.
// Error Contract: returns sentinel.ErrNotFound for unknown or non-grantor
// parties so ledger-side callers can classify the failure.
func (s *Service) GrantorKey(ctx context.Context, grantorID id.GrantorID) (ed25519.PublicKey, error) {
	if grantorID.IsNil() {
		return nil, sentinel.ErrNotFound
	}
	party, err := s.parties.FindByID(ctx, id.PartyID(grantorID))
	if err != nil {
		return nil, err
	}
	if !party.IsGrantor() {
		return nil, sentinel.ErrNotFound
	}
	return party.PublicKey, nil
}

// SubjectExists confirms a subject registration.
// Error Contract: returns sentinel.ErrNotFound for unknown or non-subject
// parties.
func (s *Service) SubjectExists(ctx context.Context, subjectID id.SubjectID) error {
	if subjectID.IsNil() {
		return sentinel.ErrNotFound
	}
	party, err := s.parties.FindByID(ctx, id.PartyID(subjectID))
	if err != nil {
		return err
	}
	if !party.IsSubject() {
		return sentinel.ErrNotFound
	}
	return nil
}

// VerifySecret checks a grantor's API secret against the stored hash.
// Unknown parties and non-grantors fail with the same unauthorized error as a
// wrong secret, so callers learn nothing about what is registered.
func (s *Service) VerifySecret(ctx context.Context, grantorID id.GrantorID, secret string) error {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid grantor credentials")
	if grantorID.IsNil() || secret == "" {
		return invalid
	}
	party, err := s.parties.FindByID(ctx, id.PartyID(grantorID))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return invalid
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "find grantor")
	}
	if !party.IsGrantor() {
		return invalid
	}
	if verr := secrets.Verify(secret, party.SecretHash); verr != nil {
		if dErrors.HasCode(verr, dErrors.CodeUnauthorized) {
			s.auditAuthFailed(ctx, grantorID)
		}
		return verr
	}
	return nil
}

// CountSubjects reports the number of registered subjects for coverage
// reporting.
func (s *Service) CountSubjects(ctx context.Context) (int64, error) {
	count, err := s.parties.CountSubjects(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count subjects")
	}
	return count, nil
}

// emitAudit publishes an audit event. Emission is best-effort: failures are
// logged and never change the outcome of the registration.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit party audit event",
			"error", err,
			"action", event.Action,
		)
	}
}

func (s *Service) auditAuthFailed(ctx context.Context, grantorID id.GrantorID) {
	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventAuthFailed.Category(),
		Timestamp: time.Now().UTC(),
		Subject:   grantorID.String(),
		Action:    string(audit.EventAuthFailed),
		Decision:  models.AuditDecisionRejected,
		Reason:    "invalid_secret",
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   grantorID.String(),
		Client:    clientinfo.Describe(requestcontext.UserAgent(ctx)),
	})
}
