// Package worker ships staged outbox entries to Kafka. One worker per
// process is enough; the store's batch locking makes extra workers safe but
// pointless at this volume.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pactum/internal/platform/kafka/producer"
	"pactum/pkg/platform/audit/outbox"
	"pactum/pkg/platform/audit/outbox/metrics"
)

const (
	defaultTopic        = "pactum.audit.events"
	defaultBatchSize    = 100
	defaultPollInterval = 100 * time.Millisecond
	drainTimeout        = 10 * time.Second
)

// Worker polls the outbox and publishes each entry to the audit topic.
// Publish-then-mark means an entry can reach Kafka twice when the mark
// fails; the consumer's idempotent insert absorbs that.
type Worker struct {
	store        outbox.Store
	producer     *producer.Producer
	topic        string
	batchSize    int
	pollInterval time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures the Worker.
type Option func(*Worker)

// WithTopic overrides the audit topic.
func WithTopic(topic string) Option {
	return func(w *Worker) {
		w.topic = topic
	}
}

// WithBatchSize caps how many entries one poll ships.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		w.batchSize = size
	}
}

// WithPollInterval sets the time between polls.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		w.pollInterval = interval
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// New creates an outbox worker with production defaults.
func New(store outbox.Store, prod *producer.Producer, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		store:        store,
		producer:     prod,
		topic:        defaultTopic,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start launches the polling loop.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll ships one batch and records poll latency.
func (w *Worker) poll() {
	start := time.Now()

	entries, err := w.store.FetchUnprocessed(w.ctx, w.batchSize)
	if err != nil {
		w.logError("failed to fetch outbox entries", "error", err)
		if w.metrics != nil {
			w.metrics.IncPublishFailures()
		}
		return
	}
	if len(entries) == 0 {
		return
	}

	if w.metrics != nil {
		w.metrics.ObserveBatchSize(len(entries))
	}
	w.shipEntries(w.ctx, entries)

	if w.metrics != nil {
		w.metrics.ObservePollDuration(time.Since(start).Seconds())
	}
}

// shipEntries publishes a batch and marks what reached the broker. A failed
// entry stays unprocessed and comes back on the next fetch; the count of
// shipped entries is returned so drain can tell progress from a stuck batch.
func (w *Worker) shipEntries(ctx context.Context, entries []*outbox.Entry) int {
	shipped := 0
	for _, entry := range entries {
		if err := w.publishEntry(ctx, entry); err != nil {
			w.logError("failed to publish outbox entry",
				"id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			if w.metrics != nil {
				w.metrics.IncPublishFailures()
			}
			continue
		}
		shipped++

		if err := w.store.MarkProcessed(ctx, entry.ID, time.Now()); err != nil {
			// Published but unmarked: the entry re-ships and the consumer
			// deduplicates on event ID.
			w.logError("failed to mark entry as processed",
				"id", entry.ID,
				"error", err,
			)
			continue
		}

		if w.metrics != nil {
			w.metrics.IncPublished()
		}
	}
	return shipped
}

// publishEntry sends one entry to Kafka, keyed by its ID.
func (w *Worker) publishEntry(ctx context.Context, entry *outbox.Entry) error {
	start := time.Now()

	err := w.producer.Produce(ctx, &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.ID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	})
	if err != nil {
		return err
	}

	if w.metrics != nil {
		w.metrics.ObservePublishDuration(time.Since(start).Seconds())
	}
	return nil
}

// drain ships whatever it can before shutdown, on its own deadline since the
// run context is already cancelled. A pass that ships nothing ends the drain:
// the broker is unreachable and retrying into the deadline helps nobody.
func (w *Worker) drain() {
	if w.logger != nil {
		w.logger.Info("draining outbox worker")
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
		if err != nil {
			w.logError("failed to fetch entries during drain", "error", err)
			return
		}
		if len(entries) == 0 {
			return
		}
		if w.shipEntries(ctx, entries) == 0 {
			return
		}
	}
}

// Stop cancels the loop and waits for the final drain, bounded by ctx.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateMetrics refreshes the pending-depth gauge. Called on a ticker from
// the assembly, not from the poll loop.
func (w *Worker) UpdateMetrics(ctx context.Context) error {
	if w.metrics == nil {
		return nil
	}

	count, err := w.store.CountPending(ctx)
	if err != nil {
		return err
	}

	w.metrics.SetPendingDepth(count)
	return nil
}

func (w *Worker) logError(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Error(msg, args...)
	}
}
