package request

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the per-endpoint latency histogram fed by
// LatencyMiddleware.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
}

// NewMetrics registers the histogram with the default registry; call it
// once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pactum_endpoint_latency_seconds",
			Help:    "Handler latency by endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
