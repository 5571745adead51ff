package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pactum/internal/reuse/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// PostgresStore persists reuse events in PostgreSQL. It follows the same
// error contract as InMemoryStore.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reuse store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create appends a reuse event to the log.
func (s *PostgresStore) Create(ctx context.Context, event *models.ReuseEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reuse_events (id, artifact_id, disclosed, occurred_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.UUID(event.ID),
		uuid.UUID(event.ArtifactID),
		event.Disclosed,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert reuse event: %w", err)
	}
	return nil
}

// FindByID returns the reuse event for the given ID.
func (s *PostgresStore) FindByID(ctx context.Context, reuseID id.ReuseID) (*models.ReuseEvent, error) {
	event, err := scanReuseEvent(s.db.QueryRowContext(ctx,
		`SELECT id, artifact_id, disclosed, occurred_at FROM reuse_events WHERE id = $1`,
		uuid.UUID(reuseID),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reuse event: %w", err)
	}
	return event, nil
}

// ListByArtifact returns the reuse events for one artifact in log order.
func (s *PostgresStore) ListByArtifact(ctx context.Context, artifactID id.ArtifactID) ([]*models.ReuseEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, artifact_id, disclosed, occurred_at
		 FROM reuse_events WHERE artifact_id = $1 ORDER BY occurred_at`,
		uuid.UUID(artifactID),
	)
	if err != nil {
		return nil, fmt.Errorf("list reuse events: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var events []*models.ReuseEvent
	for rows.Next() {
		event, serr := scanReuseEvent(rows)
		if serr != nil {
			return nil, fmt.Errorf("scan reuse event: %w", serr)
		}
		events = append(events, event)
	}
	if rerr := rows.Err(); rerr != nil {
		return nil, fmt.Errorf("iterate reuse events: %w", rerr)
	}
	return events, nil
}

// CountReuses summarizes the log for reciprocity reporting.
func (s *PostgresStore) CountReuses(ctx context.Context) (models.ReuseCounts, error) {
	var counts models.ReuseCounts
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT disclosed) FROM reuse_events`,
	).Scan(&counts.Total, &counts.Silent)
	if err != nil {
		return models.ReuseCounts{}, fmt.Errorf("count reuse events: %w", err)
	}
	return counts, nil
}

type reuseRow interface {
	Scan(dest ...any) error
}

func scanReuseEvent(row reuseRow) (*models.ReuseEvent, error) {
	var (
		event      models.ReuseEvent
		rawID      uuid.UUID
		artifactID uuid.UUID
	)
	if err := row.Scan(&rawID, &artifactID, &event.Disclosed, &event.OccurredAt); err != nil {
		return nil, err
	}
	event.ID = id.ReuseID(rawID)
	event.ArtifactID = id.ArtifactID(artifactID)
	return &event, nil
}
