package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pactum/contracts/consent"
	artifactmodels "pactum/internal/artifact/models"
	"pactum/internal/ingest/models"
	"pactum/internal/platform/metrics"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/requestcontext"
)

// Denial reasons recorded on the audit trail and the denied-ingests metric.
const (
	reasonSubjectUnknown  = "subject_unknown"
	reasonConsentRequired = "consent_required"
	reasonScopeNotCovered = "scope_not_covered"
)

// Store persists admitted ingest records.
type Store interface {
	Create(ctx context.Context, record *models.IngestRecord) error
}

// Directory answers subject registration checks.
// Error Contract:
// - SubjectExists returns sentinel.ErrNotFound when the ID does not belong
//   to a registered subject
type Directory interface {
	SubjectExists(ctx context.Context, subjectID id.SubjectID) error
}

// ArtifactMinter creates an attributed artifact for an admitted extractive
// ingest.
type ArtifactMinter interface {
	CreateAttributed(ctx context.Context, subjectID id.SubjectID, actorID id.GrantorID) (*artifactmodels.Artifact, error)
}

// AuditPublisher emits audit events for gate decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the consent gate in front of data ingestion. Extractive or
// scoped ingests must be covered by the subject's current consent; admitted
// extractive ingests mint an attributed artifact.
type Service struct {
	ingests   Store
	directory Directory
	checker   consent.Checker
	artifacts ArtifactMinter
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithAuditor sets the audit publisher for gate decisions.
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

// New creates the ingest gate service.
// Panics if a required dependency is nil - fail fast at startup.
func New(ingests Store, directory Directory, checker consent.Checker, artifacts ArtifactMinter, opts ...Option) *Service {
	if ingests == nil {
		panic("service.New: ingest store is required")
	}
	if directory == nil {
		panic("service.New: party directory is required")
	}
	if checker == nil {
		panic("service.New: consent checker is required")
	}
	if artifacts == nil {
		panic("service.New: artifact minter is required")
	}
	s := &Service{
		ingests:   ingests,
		directory: directory,
		checker:   checker,
		artifacts: artifacts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest admits or denies a data ingest for a subject.
//
// Extractive or scoped ingests must be authorized by the subject's current
// consent through the checker boundary. Plain non-extractive ingests are
// admitted without consulting consent and produce no artifact. Admitted
// extractive ingests mint a generated artifact attributed to the subject
// and record the authorizing receipt hash.
func (s *Service) Ingest(ctx context.Context, subjectID id.SubjectID, requiredScopes []string, extractive bool, actorID id.GrantorID) (*models.IngestRecord, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing grantor identity")
	}
	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject ID required")
	}

	if serr := s.directory.SubjectExists(ctx, subjectID); serr != nil {
		if errors.Is(serr, sentinel.ErrNotFound) {
			s.auditDenied(ctx, subjectID, actorID, reasonSubjectUnknown)
			return nil, dErrors.New(dErrors.CodeNotFound, "subject is not registered")
		}
		return nil, dErrors.Wrap(serr, dErrors.CodeInternal, "check subject registration")
	}

	var authorization *consent.Authorization
	if models.NeedsConsent(requiredScopes, extractive) {
		authz, aerr := s.checker.Authorize(ctx, subjectID, requiredScopes)
		if aerr != nil {
			switch {
			case dErrors.HasCode(aerr, dErrors.CodeConsentRequired):
				s.auditDenied(ctx, subjectID, actorID, reasonConsentRequired)
				return nil, aerr
			case dErrors.HasCode(aerr, dErrors.CodeScopeNotCovered):
				s.auditDenied(ctx, subjectID, actorID, reasonScopeNotCovered)
				return nil, aerr
			default:
				return nil, dErrors.Wrap(aerr, dErrors.CodeInternal, "authorize ingest")
			}
		}
		authorization = authz
	}

	record, rerr := models.NewIngestRecord(
		id.IngestID(uuid.New()),
		subjectID,
		requiredScopes,
		extractive,
		requestcontext.Now(ctx).UTC(),
	)
	if rerr != nil {
		return nil, rerr
	}
	if authorization != nil {
		record.ReceiptHash = authorization.ReceiptHash
	}

	if extractive {
		artifact, merr := s.artifacts.CreateAttributed(ctx, subjectID, actorID)
		if merr != nil {
			return nil, merr
		}
		record.ArtifactID = &artifact.ID
	}

	if cerr := s.ingests.Create(ctx, record); cerr != nil {
		return nil, dErrors.Wrap(cerr, dErrors.CodeInternal, "record ingest")
	}

	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventIngestAdmitted.Category(),
		Timestamp: time.Now().UTC(),
		SubjectID: subjectID,
		Subject:   record.ID.String(),
		Action:    string(audit.EventIngestAdmitted),
		Decision:  models.AuditDecisionAdmitted,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementIngestsAdmitted(extractive)
	}
	if s.logger != nil {
		fields := []any{
			"ingest_id", record.ID,
			"subject_id", subjectID,
			"extractive", extractive,
			"request_id", requestcontext.RequestID(ctx),
		}
		if record.ReceiptHash != "" {
			fields = append(fields, "receipt_hash", record.ReceiptHash)
		}
		if record.ArtifactID != nil {
			fields = append(fields, "artifact_id", *record.ArtifactID)
		}
		s.logger.InfoContext(ctx, "ingest admitted", fields...)
	}
	return record, nil
}

// auditDenied records a denied ingest on the audit trail and the denial
// metric.
func (s *Service) auditDenied(ctx context.Context, subjectID id.SubjectID, actorID id.GrantorID, reason string) {
	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventIngestDenied.Category(),
		Timestamp: time.Now().UTC(),
		SubjectID: subjectID,
		Action:    string(audit.EventIngestDenied),
		Decision:  models.AuditDecisionDenied,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementIngestsDenied(reason)
	}
}

// emitAudit publishes an audit event. Emission is best-effort: failures are
// logged and never change the gate decision.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit ingest audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
