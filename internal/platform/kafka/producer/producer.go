// Package producer wraps franz-go with the small produce surface the audit
// pipeline needs: synchronous sends for the outbox worker, asynchronous
// fire-and-forget for callers that must never block.
package producer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	batchMaxBytes = 16384
	lingerTime    = 5 * time.Millisecond
	closeTimeout  = 30 * time.Second
)

// Message is the transport-neutral shape callers hand to the producer.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer is a thin synchronized wrapper over a kgo.Client. The closed
// flag keeps late callers from producing into a flushed client.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

// Config holds broker addresses and delivery guarantees.
type Config struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// New builds a producer against the configured brokers. Audit events carry
// legal weight, so the default ack level is all in-sync replicas.
func New(cfg Config, logger *slog.Logger) (*Producer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(strings.Split(cfg.Brokers, ",")...),
		kgo.RequiredAcks(parseAcks(cfg.Acks)),
		kgo.RecordRetries(cfg.Retries),
		kgo.ProducerBatchMaxBytes(batchMaxBytes),
		kgo.ProducerLinger(lingerTime),
		kgo.AllowAutoTopicCreation(),
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{client: client, logger: logger}, nil
}

func parseAcks(acks string) kgo.Acks {
	switch acks {
	case "0":
		return kgo.NoAck()
	case "1":
		return kgo.LeaderAck()
	default:
		return kgo.AllISRAcks()
	}
}

func (p *Producer) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Produce sends one message and blocks until the broker acknowledges it.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	if p.isClosed() {
		return fmt.Errorf("producer is closed")
	}

	results := p.client.ProduceSync(ctx, recordFromMessage(msg))
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("produce message: %w", err)
	}
	return nil
}

// ProduceAsync buffers one message for background delivery. Failures are
// logged, not returned; callers that need the ack use Produce.
func (p *Producer) ProduceAsync(msg *Message) error {
	if p.isClosed() {
		return fmt.Errorf("producer is closed")
	}

	p.client.Produce(context.Background(), recordFromMessage(msg), func(r *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("kafka delivery failed",
				"topic", r.Topic,
				"partition", r.Partition,
				"error", err,
			)
		}
	})
	return nil
}

func recordFromMessage(msg *Message) *kgo.Record {
	var headers []kgo.RecordHeader
	for k, v := range msg.Headers {
		headers = append(headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	return &kgo.Record{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}

// Flush blocks until buffered messages deliver or the timeout passes.
// Returns the number of records it could not confirm: zero on success.
func (p *Producer) Flush(timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := p.client.Flush(ctx); err != nil {
		return 1
	}
	return 0
}

// Close flushes with a bounded deadline and releases the client. Idempotent.
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := p.client.Flush(ctx); err != nil {
		if p.logger != nil {
			p.logger.Warn("kafka producer closed with unflushed messages",
				"error", err,
			)
		}
	}

	p.client.Close()
	return nil
}

// Healthy reports whether the brokers answer a ping.
func (p *Producer) Healthy(ctx context.Context) bool {
	if p.isClosed() {
		return false
	}
	return p.client.Ping(ctx) == nil
}

// Len reports how many records sit in the produce buffer.
func (p *Producer) Len() int {
	return int(p.client.BufferedProduceRecords())
}

// NewNoopProducer returns a producer that drops everything. The assembly
// uses it when Kafka is not configured so the audit path needs no
// nil checks.
func NewNoopProducer(logger *slog.Logger) *NoopProducer {
	return &NoopProducer{logger: logger}
}

// NoopProducer discards all messages.
type NoopProducer struct {
	logger *slog.Logger
}

// Produce discards the message.
func (p *NoopProducer) Produce(ctx context.Context, msg *Message) error {
	return nil
}

// ProduceAsync discards the message.
func (p *NoopProducer) ProduceAsync(msg *Message) error {
	return nil
}

// Flush reports success immediately.
func (p *NoopProducer) Flush(timeout time.Duration) int {
	return 0
}

// Close is a no-op.
func (p *NoopProducer) Close() error {
	return nil
}

// Healthy always reports true.
func (p *NoopProducer) Healthy(ctx context.Context) bool {
	return true
}

// Len always reports an empty buffer.
func (p *NoopProducer) Len() int {
	return 0
}
