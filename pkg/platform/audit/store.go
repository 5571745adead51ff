package audit

import (
	"context"

	id "pactum/pkg/domain"
)

// Store persists audit events. Implementations must be safe for concurrent
// use; the outbox-backed postgres store is the production implementation and
// the memory store backs tests.
type Store interface {
	// Append records an event. Outbox-backed implementations stage the
	// event for asynchronous delivery in the same call.
	Append(ctx context.Context, event Event) error

	// ListBySubject returns all events recorded for a data subject in
	// insertion order.
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]Event, error)

	// ListRecent returns the most recent events across all subjects,
	// newest first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
