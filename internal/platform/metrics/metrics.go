package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Ledger metrics
	ReceiptsAppended  *prometheus.CounterVec
	ReceiptsRevoked   prometheus.Counter
	MutationsRejected *prometheus.CounterVec
	StatusQueries     *prometheus.CounterVec
	ChainVerifyFailed prometheus.Counter
	AnchorPosition    prometheus.Gauge
	AppendLatency     prometheus.Histogram

	// Status cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Party metrics
	PartiesRegistered *prometheus.CounterVec

	// Ingest gate metrics
	IngestsAdmitted *prometheus.CounterVec
	IngestsDenied   *prometheus.CounterVec

	// Artifact metrics
	ArtifactTransitions *prometheus.CounterVec
	ArtifactsCreated    prometheus.Counter

	// Reuse metrics
	ReuseEvents *prometheus.CounterVec

	// Reciprocity report gauges, refreshed on every report computation
	ReciprocityIndex   *prometheus.GaugeVec
	ReportComputations prometheus.Counter
	ReportLatency      prometheus.Histogram
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ReceiptsAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_receipts_appended_total",
			Help: "Total number of consent receipts appended, labeled by extractive",
		}, []string{"extractive"}),
		ReceiptsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pactum_receipts_revoked_total",
			Help: "Total number of receipt revocations appended",
		}),
		MutationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_mutations_rejected_total",
			Help: "Total number of rejected ledger mutations, labeled by operation and reason",
		}, []string{"operation", "reason"}),
		StatusQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_status_queries_total",
			Help: "Total number of consent status derivations, labeled by result",
		}, []string{"status"}),
		ChainVerifyFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pactum_chain_verification_failures_total",
			Help: "Total number of subject chain verifications that found a break",
		}),
		AnchorPosition: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pactum_anchor_position",
			Help: "Highest anchor position assigned in the global receipt sequence",
		}),
		AppendLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pactum_append_latency_seconds",
			Help:    "Latency of receipt append operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_cache_hits_total",
			Help: "Total number of cache hits, labeled by cache",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_cache_misses_total",
			Help: "Total number of cache misses, labeled by cache",
		}, []string{"cache"}),
		PartiesRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_parties_registered_total",
			Help: "Total number of parties registered, labeled by kind",
		}, []string{"kind"}),
		IngestsAdmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_ingests_admitted_total",
			Help: "Total number of admitted ingests, labeled by extractive",
		}, []string{"extractive"}),
		IngestsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_ingests_denied_total",
			Help: "Total number of denied ingests, labeled by reason",
		}, []string{"reason"}),
		ArtifactTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_artifact_transitions_total",
			Help: "Total number of artifact state transitions, labeled by target state",
		}, []string{"to"}),
		ArtifactsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pactum_artifacts_created_total",
			Help: "Total number of artifacts created by admitted extractive ingests",
		}),
		ReuseEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pactum_reuse_events_total",
			Help: "Total number of reuse events logged, labeled by disclosed",
		}, []string{"disclosed"}),
		ReciprocityIndex: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pactum_reciprocity_index",
			Help: "Latest reciprocity report ratios, labeled by metric (rim_1..rim_6)",
		}, []string{"metric"}),
		ReportComputations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pactum_reciprocity_reports_total",
			Help: "Total number of reciprocity report computations",
		}),
		ReportLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pactum_reciprocity_report_latency_seconds",
			Help:    "Latency of reciprocity report computations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncrementReceiptsAppended increments the receipts appended counter
func (m *Metrics) IncrementReceiptsAppended(extractive bool) {
	m.ReceiptsAppended.WithLabelValues(boolLabel(extractive)).Inc()
}

// IncrementReceiptsRevoked increments the revocations counter
func (m *Metrics) IncrementReceiptsRevoked() {
	m.ReceiptsRevoked.Inc()
}

// IncrementAppendRejected counts a rejected receipt append with a reason label
func (m *Metrics) IncrementAppendRejected(reason string) {
	m.MutationsRejected.WithLabelValues("append", reason).Inc()
}

// IncrementRevocationRejected counts a rejected revocation with a reason label
func (m *Metrics) IncrementRevocationRejected(reason string) {
	m.MutationsRejected.WithLabelValues("revoke", reason).Inc()
}

// IncrementStatusQueries increments the status query counter with the derived status
func (m *Metrics) IncrementStatusQueries(status string) {
	m.StatusQueries.WithLabelValues(status).Inc()
}

// IncrementChainVerifyFailed increments the chain verification failure counter
func (m *Metrics) IncrementChainVerifyFailed() {
	m.ChainVerifyFailed.Inc()
}

// SetAnchorPosition records the highest assigned anchor position
func (m *Metrics) SetAnchorPosition(position int64) {
	m.AnchorPosition.Set(float64(position))
}

// ObserveAppendLatency records the latency of a receipt append
func (m *Metrics) ObserveAppendLatency(durationSeconds float64) {
	m.AppendLatency.Observe(durationSeconds)
}

// RecordCacheHit increments the cache hit counter for a named cache
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the cache miss counter for a named cache
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMisses.WithLabelValues(cache).Inc()
}

// IncrementPartiesRegistered increments the parties registered counter with kind label
func (m *Metrics) IncrementPartiesRegistered(kind string) {
	m.PartiesRegistered.WithLabelValues(kind).Inc()
}

// IncrementIngestsAdmitted increments the admitted ingest counter
func (m *Metrics) IncrementIngestsAdmitted(extractive bool) {
	m.IngestsAdmitted.WithLabelValues(boolLabel(extractive)).Inc()
}

// IncrementIngestsDenied increments the denied ingest counter with a reason label
func (m *Metrics) IncrementIngestsDenied(reason string) {
	m.IngestsDenied.WithLabelValues(reason).Inc()
}

// IncrementArtifactTransitions increments the transition counter with the target state
func (m *Metrics) IncrementArtifactTransitions(to string) {
	m.ArtifactTransitions.WithLabelValues(to).Inc()
}

// IncrementArtifactsCreated increments the artifacts created counter
func (m *Metrics) IncrementArtifactsCreated() {
	m.ArtifactsCreated.Inc()
}

// IncrementReuseEvents increments the reuse event counter
func (m *Metrics) IncrementReuseEvents(disclosed bool) {
	m.ReuseEvents.WithLabelValues(boolLabel(disclosed)).Inc()
}

// SetReciprocityIndex records one ratio of the latest reciprocity report
func (m *Metrics) SetReciprocityIndex(metric string, value float64) {
	m.ReciprocityIndex.WithLabelValues(metric).Set(value)
}

// IncrementReportComputations increments the report computation counter
func (m *Metrics) IncrementReportComputations() {
	m.ReportComputations.Inc()
}

// ObserveReportLatency records the latency of a report computation
func (m *Metrics) ObserveReportLatency(durationSeconds float64) {
	m.ReportLatency.Observe(durationSeconds)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
