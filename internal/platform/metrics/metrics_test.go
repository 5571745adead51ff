package metrics

import (
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// promauto registers on the default registry, so the package shares one
// Metrics instance across tests.
var testMetrics = New()

func TestRejectionCounterSeparatesOperations(t *testing.T) {
	testMetrics.IncrementAppendRejected("invalid_signature")
	testMetrics.IncrementRevocationRejected("invalid_signature")
	testMetrics.IncrementRevocationRejected("unknown_receipt")

	appends := testMetrics.MutationsRejected.WithLabelValues("append", "invalid_signature")
	revokes := testMetrics.MutationsRejected.WithLabelValues("revoke", "invalid_signature")
	unknown := testMetrics.MutationsRejected.WithLabelValues("revoke", "unknown_receipt")

	assert.Equal(t, 1.0, promtestutil.ToFloat64(appends), "append rejections carry their own operation label")
	assert.Equal(t, 1.0, promtestutil.ToFloat64(revokes), "revocation rejections must not inflate append series")
	assert.Equal(t, 1.0, promtestutil.ToFloat64(unknown))
}
