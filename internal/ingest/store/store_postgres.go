package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pactum/internal/ingest/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// PostgresStore persists ingest records in PostgreSQL. It follows the same
// error contract as InMemoryStore.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ingest store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create stores a new ingest record.
func (s *PostgresStore) Create(ctx context.Context, record *models.IngestRecord) error {
	receiptHash := sql.NullString{
		String: record.ReceiptHash.String(),
		Valid:  record.ReceiptHash != "",
	}
	var artifactID uuid.NullUUID
	if record.ArtifactID != nil {
		artifactID = uuid.NullUUID{UUID: uuid.UUID(*record.ArtifactID), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingests (id, subject_id, required_scopes, extractive, receipt_hash, artifact_id, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(record.ID),
		uuid.UUID(record.SubjectID),
		pq.Array(record.RequiredScopes),
		record.Extractive,
		receiptHash,
		artifactID,
		record.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert ingest: %w", err)
	}
	return nil
}

// FindByID returns the ingest record for the given ID.
func (s *PostgresStore) FindByID(ctx context.Context, ingestID id.IngestID) (*models.IngestRecord, error) {
	var (
		record      models.IngestRecord
		rawID       uuid.UUID
		subjectID   uuid.UUID
		scopes      []string
		receiptHash sql.NullString
		artifactID  uuid.NullUUID
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subject_id, required_scopes, extractive, receipt_hash, artifact_id, occurred_at
		 FROM ingests WHERE id = $1`,
		uuid.UUID(ingestID),
	).Scan(&rawID, &subjectID, pq.Array(&scopes), &record.Extractive, &receiptHash, &artifactID, &record.OccurredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ingest: %w", err)
	}

	record.ID = id.IngestID(rawID)
	record.SubjectID = id.SubjectID(subjectID)
	record.RequiredScopes = scopes
	if receiptHash.Valid {
		record.ReceiptHash = id.ReceiptHash(receiptHash.String)
	}
	if artifactID.Valid {
		aid := id.ArtifactID(artifactID.UUID)
		record.ArtifactID = &aid
	}
	return &record, nil
}

// CountExtractive counts admitted extractive ingests.
func (s *PostgresStore) CountExtractive(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingests WHERE extractive`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count extractive ingests: %w", err)
	}
	return count, nil
}
