// Package kafka holds the shared configuration types for the audit
// producer and consumer, plus the broker health check.
package kafka

import "time"

// ProducerConfig configures the audit event producer.
type ProducerConfig struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// ConsumerConfig configures the audit materializer's consumer group.
type ConsumerConfig struct {
	Brokers         string
	GroupID         string
	Topics          []string
	AutoOffsetReset string
}

// DefaultProducerConfig requires acks from all in-sync replicas; audit
// events are the compliance record and must not vanish on leader failover.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 30 * time.Second,
	}
}

// DefaultConsumerConfig starts new groups from the earliest offset so a
// fresh materializer backfills the whole audit topic.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		AutoOffsetReset: "earliest",
	}
}
