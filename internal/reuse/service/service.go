package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pactum/internal/platform/metrics"
	"pactum/internal/reuse/models"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/requestcontext"
)

// Store persists reuse events.
type Store interface {
	Create(ctx context.Context, event *models.ReuseEvent) error
	ListByArtifact(ctx context.Context, artifactID id.ArtifactID) ([]*models.ReuseEvent, error)
}

// ArtifactMarker bumps a generated artifact to used when it is reused.
// Error Contract:
// - MarkUsed returns CodeNotFound when the artifact is not in the registry
type ArtifactMarker interface {
	MarkUsed(ctx context.Context, artifactID id.ArtifactID, actorID id.GrantorID) error
}

// AuditPublisher emits audit events for logged reuses.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the reuse disclosure log. Every reuse is appended, disclosed or
// not, known artifact or not. Silent reuse of unregistered artifacts is the
// behavior the log exists to make visible.
type Service struct {
	reuses    Store
	artifacts ArtifactMarker
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithAuditor sets the audit publisher for logged reuses.
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

// New creates the reuse log service.
// Panics if a required dependency is nil - fail fast at startup.
func New(reuses Store, artifacts ArtifactMarker, opts ...Option) *Service {
	if reuses == nil {
		panic("service.New: reuse store is required")
	}
	if artifacts == nil {
		panic("service.New: artifact marker is required")
	}
	s := &Service{
		reuses:    reuses,
		artifacts: artifacts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogReuse appends a reuse event and bumps a generated artifact to used.
//
// The append is unconditional: unknown artifacts are logged like any other.
// The state bump is best-effort; once the event is in the log it stands,
// whatever happens to the artifact afterwards.
func (s *Service) LogReuse(ctx context.Context, artifactID id.ArtifactID, disclosed bool, actorID id.GrantorID) (*models.ReuseEvent, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing grantor identity")
	}
	if artifactID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "artifact ID required")
	}

	event, err := models.NewReuseEvent(
		id.ReuseID(uuid.New()),
		artifactID,
		disclosed,
		requestcontext.Now(ctx).UTC(),
	)
	if err != nil {
		return nil, err
	}

	if cerr := s.reuses.Create(ctx, event); cerr != nil {
		return nil, dErrors.Wrap(cerr, dErrors.CodeInternal, "record reuse")
	}

	if merr := s.artifacts.MarkUsed(ctx, artifactID, actorID); merr != nil {
		if !dErrors.HasCode(merr, dErrors.CodeNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to mark reused artifact used",
				"artifact_id", artifactID,
				"error", merr,
			)
		}
	}

	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventReuseLogged.Category(),
		Timestamp: time.Now().UTC(),
		Subject:   artifactID.String(),
		Action:    string(audit.EventReuseLogged),
		Decision:  decision(disclosed),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementReuseEvents(disclosed)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "reuse logged",
			"reuse_id", event.ID,
			"artifact_id", artifactID,
			"disclosed", disclosed,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return event, nil
}

// ListByArtifact returns the reuse history of one artifact, oldest first.
func (s *Service) ListByArtifact(ctx context.Context, artifactID id.ArtifactID) ([]*models.ReuseEvent, error) {
	if artifactID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "artifact ID required")
	}
	events, err := s.reuses.ListByArtifact(ctx, artifactID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list reuses")
	}
	return events, nil
}

func decision(disclosed bool) string {
	if disclosed {
		return models.AuditDecisionDisclosed
	}
	return models.AuditDecisionSilent
}

// emitAudit publishes an audit event. Emission is best-effort: failures are
// logged and never change the outcome of the append.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit reuse audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
