package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists staged audit events until the worker ships them to Kafka.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stages an entry. Callers append inside the same transaction as
	// the ledger mutation so the event and the mutation commit atomically.
	Append(ctx context.Context, entry *Entry) error

	// FetchUnprocessed returns up to limit unshipped entries, oldest first.
	// Postgres implementations lock the batch (FOR UPDATE SKIP LOCKED) so
	// concurrent workers never ship the same entry twice.
	FetchUnprocessed(ctx context.Context, limit int) ([]*Entry, error)

	// MarkProcessed records that an entry reached the broker. Idempotent:
	// marking an already-processed entry is not an error.
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error

	// CountPending returns the unshipped backlog for the depth gauge.
	CountPending(ctx context.Context) (int64, error)

	// DeleteProcessedBefore prunes shipped entries older than the retention
	// horizon and returns how many were removed.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
