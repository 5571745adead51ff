package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pactum/internal/artifact/models"
	"pactum/internal/artifact/store"
	"pactum/internal/platform/metrics"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/requestcontext"
)

// Store persists artifacts and attributions.
// Error Contract:
// - FindByID, TransitionState, Attribute return sentinel.ErrNotFound for
//   unknown artifacts
// - TransitionState returns sentinel.ErrInvalidState on a concurrent state
//   change
type Store interface {
	Create(ctx context.Context, artifact *models.Artifact) error
	FindByID(ctx context.Context, artifactID id.ArtifactID) (*models.Artifact, error)
	TransitionState(ctx context.Context, artifactID id.ArtifactID, from, to models.State, everPublished bool) error
	Attribute(ctx context.Context, artifactID id.ArtifactID, subjectID id.SubjectID) (bool, error)
	List(ctx context.Context, filter store.ListFilter) ([]*models.Artifact, error)
}

// AuditPublisher emits audit events for artifact lifecycle changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the artifact lifecycle: creation, state transitions,
// attribution, and the reuse-driven state bump.
type Service struct {
	artifacts Store
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithAuditor sets the audit publisher for lifecycle events.
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

// New creates the artifact service.
// Panics if the store is nil - fail fast at startup.
func New(artifacts Store, opts ...Option) *Service {
	if artifacts == nil {
		panic("service.New: artifact store is required")
	}
	s := &Service{artifacts: artifacts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAttributed creates an artifact in the generated state attributed to
// its source subject. The ingest gate calls this for every admitted
// extractive ingest.
func (s *Service) CreateAttributed(ctx context.Context, subjectID id.SubjectID, actorID id.GrantorID) (*models.Artifact, error) {
	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject ID required")
	}

	artifact, err := models.NewArtifact(id.ArtifactID(uuid.New()), requestcontext.Now(ctx).UTC())
	if err != nil {
		return nil, err
	}

	if cerr := s.artifacts.Create(ctx, artifact); cerr != nil {
		return nil, dErrors.Wrap(cerr, dErrors.CodeInternal, "create artifact")
	}
	if _, aerr := s.artifacts.Attribute(ctx, artifact.ID, subjectID); aerr != nil {
		return nil, dErrors.Wrap(aerr, dErrors.CodeInternal, "attribute artifact")
	}
	artifact.Attribute(subjectID)

	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventArtifactCreated.Category(),
		Timestamp: time.Now().UTC(),
		SubjectID: subjectID,
		Subject:   artifact.ID.String(),
		Action:    string(audit.EventArtifactCreated),
		Decision:  models.AuditDecisionCreated,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementArtifactsCreated()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "artifact created",
			"artifact_id", artifact.ID,
			"subject_id", subjectID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return artifact, nil
}

// Transition moves an artifact along the state machine.
func (s *Service) Transition(ctx context.Context, artifactID id.ArtifactID, to models.State, actorID id.GrantorID) (*models.Artifact, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "acting grantor required")
	}
	if artifactID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "artifact ID required")
	}

	artifact, err := s.loadArtifact(ctx, artifactID)
	if err != nil {
		return nil, err
	}

	from := artifact.State
	if terr := artifact.TransitionTo(to); terr != nil {
		return nil, terr
	}

	if serr := s.artifacts.TransitionState(ctx, artifactID, from, to, artifact.EverPublished); serr != nil {
		switch {
		case errors.Is(serr, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "artifact not found")
		case errors.Is(serr, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "artifact state changed concurrently")
		default:
			return nil, dErrors.Wrap(serr, dErrors.CodeInternal, "transition artifact")
		}
	}

	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventArtifactTransitioned.Category(),
		Timestamp: time.Now().UTC(),
		Subject:   artifactID.String(),
		Action:    string(audit.EventArtifactTransitioned),
		Decision:  models.AuditDecisionTransitioned,
		Reason:    string(from) + ">" + string(to),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementArtifactTransitions(string(to))
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "artifact transitioned",
			"artifact_id", artifactID,
			"from", from,
			"to", to,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return artifact, nil
}

// Attribute records a source subject on an artifact. Repeat attributions are
// accepted and change nothing.
func (s *Service) Attribute(ctx context.Context, artifactID id.ArtifactID, subjectID id.SubjectID, actorID id.GrantorID) (*models.Artifact, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "acting grantor required")
	}
	if artifactID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "artifact ID required")
	}
	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject ID required")
	}

	added, err := s.artifacts.Attribute(ctx, artifactID, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "artifact not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "attribute artifact")
	}

	if added {
		s.emitAudit(ctx, audit.Event{
			Category:  audit.EventArtifactAttributed.Category(),
			Timestamp: time.Now().UTC(),
			SubjectID: subjectID,
			Subject:   artifactID.String(),
			Action:    string(audit.EventArtifactAttributed),
			Decision:  models.AuditDecisionAttributed,
			RequestID: requestcontext.RequestID(ctx),
			ActorID:   actorID.String(),
		})
	}
	return s.loadArtifact(ctx, artifactID)
}

// Get returns an artifact with its attributions.
func (s *Service) Get(ctx context.Context, artifactID id.ArtifactID) (*models.Artifact, error) {
	if artifactID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "artifact ID required")
	}
	return s.loadArtifact(ctx, artifactID)
}

// List returns artifacts matching the filter, oldest first.
func (s *Service) List(ctx context.Context, filter store.ListFilter) ([]*models.Artifact, error) {
	artifacts, err := s.artifacts.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list artifacts")
	}
	return artifacts, nil
}

// MarkUsed is the reuse-driven state bump: a generated artifact becomes
// used, a used artifact stays used, published and archived artifacts are left
// alone. Unknown artifacts fail with NotFound so callers can decide whether
// that matters.
func (s *Service) MarkUsed(ctx context.Context, artifactID id.ArtifactID, actorID id.GrantorID) error {
	artifact, err := s.loadArtifact(ctx, artifactID)
	if err != nil {
		return err
	}
	if artifact.State != models.StateGenerated {
		return nil
	}

	serr := s.artifacts.TransitionState(ctx, artifactID, models.StateGenerated, models.StateUsed, false)
	if serr != nil {
		// A concurrent transition moved the artifact out of generated; the
		// bump is moot either way.
		if errors.Is(serr, sentinel.ErrInvalidState) || errors.Is(serr, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(serr, dErrors.CodeInternal, "mark artifact used")
	}

	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventArtifactTransitioned.Category(),
		Timestamp: time.Now().UTC(),
		Subject:   artifactID.String(),
		Action:    string(audit.EventArtifactTransitioned),
		Decision:  models.AuditDecisionTransitioned,
		Reason:    "reuse",
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementArtifactTransitions(string(models.StateUsed))
	}
	return nil
}

func (s *Service) loadArtifact(ctx context.Context, artifactID id.ArtifactID) (*models.Artifact, error) {
	artifact, err := s.artifacts.FindByID(ctx, artifactID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "artifact not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find artifact")
	}
	return artifact, nil
}

// emitAudit publishes an audit event. Emission is best-effort: failures are
// logged and never change the outcome of the lifecycle operation.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit artifact audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
