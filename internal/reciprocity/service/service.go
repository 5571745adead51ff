package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	artifactmodels "pactum/internal/artifact/models"
	ledgermodels "pactum/internal/ledger/models"
	"pactum/internal/platform/metrics"
	"pactum/internal/reciprocity/models"
	reusemodels "pactum/internal/reuse/models"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/requestcontext"
)

// Ledger reads consent chain heads and receipt totals.
type Ledger interface {
	ListHeads(ctx context.Context) ([]*ledgermodels.HeadState, error)
	CountReceipts(ctx context.Context) (ledgermodels.ReceiptCounts, error)
}

// SubjectDirectory counts registered subjects.
type SubjectDirectory interface {
	CountSubjects(ctx context.Context) (int64, error)
}

// IngestLog counts admitted extractive ingests.
type IngestLog interface {
	CountExtractive(ctx context.Context) (int64, error)
}

// ArtifactRegistry reports artifact lifecycle tallies.
type ArtifactRegistry interface {
	CountByState(ctx context.Context) (map[artifactmodels.State]int64, error)
	CountEverPublished(ctx context.Context) (int64, error)
	CountAttributed(ctx context.Context) (int64, error)
}

// ReuseLog summarizes the reuse disclosure log.
type ReuseLog interface {
	CountReuses(ctx context.Context) (reusemodels.ReuseCounts, error)
}

// AuditPublisher emits audit events for report computations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service computes the reciprocity report. It is a pure read over the other
// stores; nothing here mutates state.
type Service struct {
	ledger    Ledger
	directory SubjectDirectory
	ingests   IngestLog
	artifacts ArtifactRegistry
	reuses    ReuseLog
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithAuditor sets the audit publisher for report computations.
func WithAuditor(auditor AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithMetrics sets the metrics collector. Besides the usual counters, each
// report computation publishes the six indices as gauges.
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

// New creates the reciprocity report service.
// Panics if a required dependency is nil - fail fast at startup.
func New(ledger Ledger, directory SubjectDirectory, ingests IngestLog, artifacts ArtifactRegistry, reuses ReuseLog, opts ...Option) *Service {
	if ledger == nil {
		panic("service.New: ledger reader is required")
	}
	if directory == nil {
		panic("service.New: subject directory is required")
	}
	if ingests == nil {
		panic("service.New: ingest log is required")
	}
	if artifacts == nil {
		panic("service.New: artifact registry is required")
	}
	if reuses == nil {
		panic("service.New: reuse log is required")
	}
	s := &Service{
		ledger:    ledger,
		directory: directory,
		ingests:   ingests,
		artifacts: artifacts,
		reuses:    reuses,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// headTallies is the single pass over the chain heads.
type headTallies struct {
	active   int64
	expiring int64
	scoped   int64
}

// Report evaluates the six Reciprocity Index Metrics as of the given moment.
// The sections are gathered concurrently; consent status is judged at `at`,
// so a report for a past moment sees receipts as they stood then.
func (s *Service) Report(ctx context.Context, at time.Time) (*models.Report, error) {
	started := time.Now()

	var (
		heads         headTallies
		receiptCounts ledgermodels.ReceiptCounts
		subjects      int64
		extractive    int64
		states        map[artifactmodels.State]int64
		everPublished int64
		attributed    int64
		reuseCounts   reusemodels.ReuseCounts
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		listed, err := s.ledger.ListHeads(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list chain heads")
		}
		heads = tallyHeads(listed, at)
		return nil
	})
	g.Go(func() error {
		counts, err := s.ledger.CountReceipts(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "count receipts")
		}
		receiptCounts = counts
		return nil
	})
	g.Go(func() error {
		count, err := s.directory.CountSubjects(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "count subjects")
		}
		subjects = count
		return nil
	})
	g.Go(func() error {
		count, err := s.ingests.CountExtractive(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "count extractive ingests")
		}
		extractive = count
		return nil
	})
	g.Go(func() error {
		byState, err := s.artifacts.CountByState(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "count artifact states")
		}
		published, err := s.artifacts.CountEverPublished(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "count published artifacts")
		}
		withSources, err := s.artifacts.CountAttributed(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "count attributed artifacts")
		}
		states, everPublished, attributed = byState, published, withSources
		return nil
	})
	g.Go(func() error {
		counts, err := s.reuses.CountReuses(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "count reuses")
		}
		reuseCounts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.Report{
		At: at,
		Counts: models.Counts{
			TotalSubjects:            subjects,
			ActiveConsentingSubjects: heads.active,
			ExtractiveIngests:        extractive,
			EverPublishedArtifacts:   everPublished,
			AttributedArtifacts:      attributed,
			TotalReuses:              reuseCounts.Total,
			SilentReuses:             reuseCounts.Silent,
			ArtifactStates:           stateCounts(states),
			TotalReceipts:            receiptCounts.Total,
			AnchoredReceipts:         receiptCounts.Anchored,
		},
		Indices: models.Indices{
			ConsentCoverage:     ratio(heads.active, subjects, 0),
			AttributionCoverage: ratio(attributed, extractive, 0),
			DisclosedReuseRate:  ratio(reuseCounts.Total-reuseCounts.Silent, reuseCounts.Total, 1),
			ExpiringShare:       ratio(heads.expiring, heads.active, 0),
			ScopedShare:         ratio(heads.scoped, heads.active, 0),
			PublicationRate:     ratio(everPublished, extractive, 0),
		},
	}

	s.publishGauges(report.Indices)
	if s.metrics != nil {
		s.metrics.IncrementReportComputations()
		s.metrics.ObserveReportLatency(time.Since(started).Seconds())
	}
	s.emitAudit(ctx, report)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "reciprocity report computed",
			"at", at,
			"consent_coverage", report.Indices.ConsentCoverage,
			"disclosed_reuse_rate", report.Indices.DisclosedReuseRate,
			"subjects", subjects,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return report, nil
}

// tallyHeads classifies each subject's current consent at the report moment.
// Only the head receipt counts: earlier links are history, not consent.
func tallyHeads(heads []*ledgermodels.HeadState, at time.Time) headTallies {
	var tallies headTallies
	for _, head := range heads {
		receipt := head.Receipt
		if !receipt.Extractive {
			continue
		}
		if receipt.Status(head.Revocation, at) != ledgermodels.StatusActive {
			continue
		}
		tallies.active++
		if receipt.ExpiresAt != nil {
			tallies.expiring++
		}
		if len(receipt.Scope) > 0 {
			tallies.scoped++
		}
	}
	return tallies
}

// ratio divides rounded to 4 decimals, with a fixed value for an empty
// denominator.
func ratio(numerator, denominator int64, whenEmpty float64) float64 {
	if denominator == 0 {
		return whenEmpty
	}
	return math.Round(float64(numerator)/float64(denominator)*10000) / 10000
}

// stateCounts fills the wire map so every lifecycle state is present.
func stateCounts(states map[artifactmodels.State]int64) map[string]int64 {
	counts := make(map[string]int64, len(artifactmodels.AllStates))
	for _, state := range artifactmodels.AllStates {
		counts[string(state)] = states[state]
	}
	return counts
}

func (s *Service) publishGauges(indices models.Indices) {
	if s.metrics == nil {
		return
	}
	s.metrics.SetReciprocityIndex(models.MetricConsentCoverage, indices.ConsentCoverage)
	s.metrics.SetReciprocityIndex(models.MetricAttributionCoverage, indices.AttributionCoverage)
	s.metrics.SetReciprocityIndex(models.MetricDisclosedReuseRate, indices.DisclosedReuseRate)
	s.metrics.SetReciprocityIndex(models.MetricExpiringShare, indices.ExpiringShare)
	s.metrics.SetReciprocityIndex(models.MetricScopedShare, indices.ScopedShare)
	s.metrics.SetReciprocityIndex(models.MetricPublicationRate, indices.PublicationRate)
}

// emitAudit records the computation on the operations trail. Best-effort:
// failures are logged and the report is returned regardless.
func (s *Service) emitAudit(ctx context.Context, report *models.Report) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Category:  audit.EventReportComputed.Category(),
		Timestamp: time.Now().UTC(),
		Subject:   report.At.UTC().Format(time.RFC3339),
		Action:    string(audit.EventReportComputed),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit report audit event",
			"error", err,
		)
	}
}
