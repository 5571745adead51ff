package publisher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	dErrors "pactum/pkg/domain-errors"
	audit "pactum/pkg/platform/audit"
	auditmetrics "pactum/pkg/platform/audit/metrics"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store    audit.Store
	events   chan audit.Event
	wg       sync.WaitGroup
	logger   *slog.Logger
	metrics  *auditmetrics.Metrics
	draining atomic.Bool
	async    bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics attaches queue and persistence metrics.
func WithMetrics(m *auditmetrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

// processEvents runs in a goroutine and persists events from the channel.
func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		p.metrics.DecQueueDepth()
		if p.draining.Load() {
			p.metrics.IncWorkerDrainEvents()
		}

		start := time.Now()
		err := p.store.Append(context.Background(), event)
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		if err != nil {
			p.metrics.IncPersistFailures()
			if p.logger != nil {
				p.logger.Error("failed to persist audit event",
					"error", err,
					"action", event.Action,
					"subject_id", event.SubjectID,
				)
			}
			continue
		}
		p.metrics.IncEventsProcessed()
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		p.draining.Store(true)
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, base audit.Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	if base.Category == "" {
		base.Category = audit.AuditEvent(base.Action).Category()
	}
	if p.async {
		start := time.Now()
		// Non-blocking send with context cancellation support
		select {
		case p.events <- base:
			p.metrics.IncEventsEnqueued()
			p.metrics.IncQueueDepth()
			p.metrics.ObserveEmitDuration(time.Since(start).Seconds())
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			p.metrics.IncEventsDropped()
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", base.Action,
					"subject_id", base.SubjectID,
				)
			}
			return dErrors.New(dErrors.CodeInternal, "audit buffer full")
		}
	}

	start := time.Now()
	err := p.store.Append(ctx, base)
	p.metrics.ObserveEmitDuration(time.Since(start).Seconds())
	if err != nil {
		p.metrics.IncPersistFailures()
	}
	return err
}
