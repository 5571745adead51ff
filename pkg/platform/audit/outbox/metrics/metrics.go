// Package metrics instruments the outbox worker. The pending-depth gauge
// is the alerting signal: a growing backlog means audit events are staged
// but not reaching Kafka.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics holds the worker's Prometheus collectors.
type Metrics struct {
	PendingDepth     prometheus.Gauge
	OldestPendingAge prometheus.Gauge

	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram

	PollDuration   prometheus.Histogram
	WorkerRestarts prometheus.Counter
}

// New registers the outbox collectors with the default registry. Register
// once per process; the worker receives the instance via WithMetrics.
func New() *Metrics {
	return &Metrics{
		PendingDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pactum_outbox_pending_total",
			Help: "Staged entries not yet published to Kafka",
		}),
		OldestPendingAge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pactum_outbox_oldest_pending_seconds",
			Help: "Age of the oldest unpublished entry",
		}),
		PublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pactum_outbox_published_total",
			Help: "Entries published and marked processed",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pactum_outbox_publish_failures_total",
			Help: "Publish attempts that failed and will retry",
		}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pactum_outbox_publish_duration_seconds",
			Help:    "Broker round-trip time per entry",
			Buckets: durationBuckets,
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pactum_outbox_batch_size",
			Help:    "Entries fetched per poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		PollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pactum_outbox_poll_duration_seconds",
			Help:    "Wall time of one poll cycle",
			Buckets: durationBuckets,
		}),
		WorkerRestarts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pactum_outbox_worker_restarts_total",
			Help: "Worker restarts after loop errors",
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64) {
	m.PendingDepth.Set(float64(count))
}

func (m *Metrics) SetOldestPendingAge(ageSeconds float64) {
	m.OldestPendingAge.Set(ageSeconds)
}

func (m *Metrics) IncPublished() {
	m.PublishedTotal.Inc()
}

func (m *Metrics) IncPublishFailures() {
	m.PublishFailures.Inc()
}

func (m *Metrics) ObservePublishDuration(durationSeconds float64) {
	m.PublishDuration.Observe(durationSeconds)
}

func (m *Metrics) ObserveBatchSize(size int) {
	m.BatchSize.Observe(float64(size))
}

func (m *Metrics) ObservePollDuration(durationSeconds float64) {
	m.PollDuration.Observe(durationSeconds)
}

func (m *Metrics) IncWorkerRestarts() {
	m.WorkerRestarts.Inc()
}
