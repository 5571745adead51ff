package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pactum/internal/party/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// PostgresStore persists parties in PostgreSQL. It follows the same error
// contract as InMemoryStore. Grantor name uniqueness is enforced by a partial
// unique index, so concurrent registrations cannot race past the check.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed party store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create registers a party.
func (s *PostgresStore) Create(ctx context.Context, party *models.Party) error {
	var secretHash sql.NullString
	if party.SecretHash != "" {
		secretHash = sql.NullString{String: party.SecretHash, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO parties (id, kind, display_name, public_key, api_secret_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(party.ID),
		string(party.Kind),
		party.DisplayName,
		[]byte(party.PublicKey),
		secretHash,
		party.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}

// FindByID returns the party with the given ID.
func (s *PostgresStore) FindByID(ctx context.Context, partyID id.PartyID) (*models.Party, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, display_name, public_key, api_secret_hash, created_at
		 FROM parties WHERE id = $1`,
		uuid.UUID(partyID),
	)

	var (
		party      models.Party
		rawID      uuid.UUID
		kind       string
		publicKey  []byte
		secretHash sql.NullString
	)
	err := row.Scan(&rawID, &kind, &party.DisplayName, &publicKey, &secretHash, &party.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find party: %w", err)
	}

	party.ID = id.PartyID(rawID)
	party.Kind = models.Kind(kind)
	party.PublicKey = publicKey
	party.SecretHash = secretHash.String
	return &party, nil
}

// CountSubjects returns the number of registered subjects.
func (s *PostgresStore) CountSubjects(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parties WHERE kind = 'subject'`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
