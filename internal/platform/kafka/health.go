package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// HealthChecker reports Kafka broker reachability for the readiness probe.
type HealthChecker struct {
	brokers []string
	timeout time.Duration
}

// NewHealthChecker builds a checker over a comma-separated broker list.
func NewHealthChecker(brokers string) *HealthChecker {
	var seeds []string
	for _, broker := range strings.Split(brokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			seeds = append(seeds, broker)
		}
	}
	return &HealthChecker{
		brokers: seeds,
		timeout: 5 * time.Second,
	}
}

// Check pings the cluster through a short-lived client. A successful ping
// against any seed broker counts as healthy.
func (h *HealthChecker) Check(ctx context.Context) error {
	if len(h.brokers) == 0 {
		return fmt.Errorf("kafka brokers not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	client, err := kgo.NewClient(kgo.SeedBrokers(h.brokers...))
	if err != nil {
		return fmt.Errorf("kafka client: %w", err)
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("kafka ping: %w", err)
	}
	return nil
}

// Name returns the check name for health reporting.
func (h *HealthChecker) Name() string {
	return "kafka"
}
