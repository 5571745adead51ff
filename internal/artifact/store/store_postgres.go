package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"pactum/internal/artifact/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// PostgresStore persists artifacts and attributions in PostgreSQL. It
// follows the same error contract as InMemoryStore.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed artifact store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create stores a new artifact.
func (s *PostgresStore) Create(ctx context.Context, artifact *models.Artifact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, state, ever_published, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.UUID(artifact.ID),
		string(artifact.State),
		artifact.EverPublished,
		artifact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// FindByID returns the artifact with its attributions in attribution order.
func (s *PostgresStore) FindByID(ctx context.Context, artifactID id.ArtifactID) (*models.Artifact, error) {
	var (
		artifact models.Artifact
		rawID    uuid.UUID
		state    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, state, ever_published, created_at FROM artifacts WHERE id = $1`,
		uuid.UUID(artifactID),
	).Scan(&rawID, &state, &artifact.EverPublished, &artifact.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find artifact: %w", err)
	}
	artifact.ID = id.ArtifactID(rawID)
	artifact.State = models.State(state)

	rows, err := s.db.QueryContext(ctx,
		`SELECT subject_id FROM attributions WHERE artifact_id = $1 ORDER BY created_at, subject_id`,
		uuid.UUID(artifactID),
	)
	if err != nil {
		return nil, fmt.Errorf("load attributions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var subjectID uuid.UUID
		if err := rows.Scan(&subjectID); err != nil {
			return nil, fmt.Errorf("scan attribution: %w", err)
		}
		artifact.Attributions = append(artifact.Attributions, id.SubjectID(subjectID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attributions: %w", err)
	}
	return &artifact, nil
}

// TransitionState swaps the artifact state, compare-and-set on the expected
// current state. ever_published only ever latches on.
func (s *PostgresStore) TransitionState(ctx context.Context, artifactID id.ArtifactID, from, to models.State, everPublished bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE artifacts SET state = $1, ever_published = ever_published OR $2 WHERE id = $3 AND state = $4`,
		string(to),
		everPublished,
		uuid.UUID(artifactID),
		string(from),
	)
	if err != nil {
		return fmt.Errorf("transition artifact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition artifact: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM artifacts WHERE id = $1)`,
		uuid.UUID(artifactID),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check artifact existence: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// Attribute records a source subject. The return reports whether the subject
// was newly added.
func (s *PostgresStore) Attribute(ctx context.Context, artifactID id.ArtifactID, subjectID id.SubjectID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO attributions (artifact_id, subject_id, created_at) VALUES ($1, $2, now())
		 ON CONFLICT (artifact_id, subject_id) DO NOTHING`,
		uuid.UUID(artifactID),
		uuid.UUID(subjectID),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("insert attribution: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert attribution: %w", err)
	}
	return affected == 1, nil
}

// List returns artifacts matching the filter, oldest first, attributions
// included.
func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*models.Artifact, error) {
	query := `SELECT a.id, a.state, a.ever_published, a.created_at,
	                 COALESCE(array_agg(t.subject_id::text ORDER BY t.created_at, t.subject_id)
	                          FILTER (WHERE t.subject_id IS NOT NULL), '{}')
	          FROM artifacts a
	          LEFT JOIN attributions t ON t.artifact_id = a.id`
	args := []any{}
	if filter.State != nil {
		query += ` WHERE a.state = $1`
		args = append(args, string(*filter.State))
	}
	query += ` GROUP BY a.id ORDER BY a.created_at, a.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*models.Artifact
	for rows.Next() {
		var (
			artifact models.Artifact
			rawID    uuid.UUID
			state    string
			subjects []string
		)
		if err := rows.Scan(&rawID, &state, &artifact.EverPublished, &artifact.CreatedAt, pq.Array(&subjects)); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifact.ID = id.ArtifactID(rawID)
		artifact.State = models.State(state)
		for _, subject := range subjects {
			subjectID, perr := id.ParseSubjectID(subject)
			if perr != nil {
				return nil, fmt.Errorf("parse attribution subject: %w", perr)
			}
			artifact.Attributions = append(artifact.Attributions, subjectID)
		}
		artifacts = append(artifacts, &artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

// CountByState tallies artifacts per lifecycle state.
func (s *PostgresStore) CountByState(ctx context.Context) (map[models.State]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM artifacts GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("count artifacts by state: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.State]int64)
	for rows.Next() {
		var (
			state string
			count int64
		)
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		counts[models.State(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state counts: %w", err)
	}
	return counts, nil
}

// CountEverPublished counts artifacts that ever reached published.
func (s *PostgresStore) CountEverPublished(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts WHERE ever_published`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ever published: %w", err)
	}
	return count, nil
}

// CountAttributed counts artifacts with at least one source subject.
func (s *PostgresStore) CountAttributed(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT artifact_id) FROM attributions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attributed: %w", err)
	}
	return count, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
