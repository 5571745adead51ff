package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one staged audit event. Entries are inserted in the same
// transaction as the domain write they describe, so a receipt append and
// its audit event commit or roll back together.
type Entry struct {
	ID            uuid.UUID
	AggregateType string     // "subject", "receipt", "party", "audit"
	AggregateID   string     // subject ID or receipt hash
	EventType     string     // "receipt_appended", "receipt_revoked", ...
	Payload       []byte     // JSON-encoded audit.Event
	CreatedAt     time.Time  // insertion order drives shipping order
	ProcessedAt   *time.Time // nil until the worker confirms the publish
}

// IsPending reports whether the entry still awaits publishing.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry stages an event. The generated ID doubles as the Kafka record
// key and the consumer's dedup key.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}
