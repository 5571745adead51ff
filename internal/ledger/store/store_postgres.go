package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pactum/internal/ledger/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

// PostgresStore persists the consent ledger in PostgreSQL. It follows the
// same error contract as InMemoryStore.
//
// Appends run in a transaction that locks the subject's chain_heads row, so
// chain extension, anchor assignment and the head swap commit atomically.
// Anchor positions come from the anchors BIGSERIAL sequence: monotonic in
// commit order, with gaps possible after rolled-back appends.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs a PostgreSQL-backed ledger store bound to a transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// AppendReceipt extends the subject chain and the global anchor sequence.
func (s *PostgresStore) AppendReceipt(ctx context.Context, receipt *models.ConsentReceipt) error {
	if receipt == nil {
		return fmt.Errorf("receipt is required")
	}
	if s.tx != nil {
		return appendReceiptTx(ctx, s.tx, receipt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := appendReceiptTx(ctx, tx, receipt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func appendReceiptTx(ctx context.Context, tx *sql.Tx, receipt *models.ConsentReceipt) error {
	// The duplicate check runs before the chain check: identical content
	// appended twice reports DuplicateReceipt even though its prev_hash is
	// stale too.
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM receipts WHERE receipt_hash = $1)`,
		receipt.Hash.String(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate receipt: %w", err)
	}
	if exists {
		return sentinel.ErrDuplicateReceipt
	}

	// Lock the subject's head row so chain extension serializes per subject.
	var head id.ReceiptHash
	var headHash string
	err = tx.QueryRowContext(ctx,
		`SELECT head_hash FROM chain_heads WHERE subject_id = $1 FOR UPDATE`,
		uuid.UUID(receipt.SubjectID),
	).Scan(&headHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no chain yet, genesis expected
	case err != nil:
		return fmt.Errorf("lock chain head: %w", err)
	default:
		head = id.ReceiptHash(headHash)
	}
	if receipt.PrevHash != head {
		return sentinel.ErrInvalidChain
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO anchors (receipt_hash) VALUES ($1) RETURNING position`,
		receipt.Hash.String(),
	).Scan(&receipt.AnchorPosition)
	if err != nil {
		return fmt.Errorf("assign anchor position: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO receipts (receipt_hash, subject_id, grantor_id, scope, extractive,
			issued_at, expires_at, prev_hash, signature, anchor_position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		receipt.Hash.String(),
		uuid.UUID(receipt.SubjectID),
		uuid.UUID(receipt.GrantorID),
		pq.Array(receipt.Scope),
		receipt.Extractive,
		receipt.IssuedAt,
		receipt.ExpiresAt,
		receipt.PrevHash.String(),
		receipt.Signature,
		receipt.AnchorPosition,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}

	if receipt.IsGenesis() {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chain_heads (subject_id, head_hash) VALUES ($1, $2) ON CONFLICT (subject_id) DO NOTHING`,
			uuid.UUID(receipt.SubjectID), receipt.Hash.String(),
		)
		if err != nil {
			return fmt.Errorf("insert chain head: %w", err)
		}
		return requireHeadSwap(res)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE chain_heads SET head_hash = $2 WHERE subject_id = $1 AND head_hash = $3`,
		uuid.UUID(receipt.SubjectID), receipt.Hash.String(), receipt.PrevHash.String(),
	)
	if err != nil {
		return fmt.Errorf("advance chain head: %w", err)
	}
	return requireHeadSwap(res)
}

// requireHeadSwap turns a missed head write into a chain violation. The head
// row is locked above, so this only fires when a concurrent writer outside
// the lock won the same position.
func requireHeadSwap(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("chain head rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrInvalidChain
	}
	return nil
}

// AppendRevocation records the terminal revocation for a receipt.
func (s *PostgresStore) AppendRevocation(ctx context.Context, record *models.RevocationRecord) error {
	if record == nil {
		return fmt.Errorf("revocation record is required")
	}

	var exists bool
	err := s.execer().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM receipts WHERE receipt_hash = $1)`,
		record.ReceiptHash.String(),
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check receipt for revocation: %w", err)
	}
	if !exists {
		return sentinel.ErrUnknownReceipt
	}

	res, err := s.execer().ExecContext(ctx,
		`INSERT INTO revocations (receipt_hash, revoked_at, signature) VALUES ($1, $2, $3) ON CONFLICT (receipt_hash) DO NOTHING`,
		record.ReceiptHash.String(), record.RevokedAt, record.Signature,
	)
	if err != nil {
		return fmt.Errorf("insert revocation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert revocation rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrAlreadyRevoked
	}
	return nil
}

func (s *PostgresStore) FindByHash(ctx context.Context, hash id.ReceiptHash) (*models.ConsentReceipt, error) {
	query := `
		SELECT receipt_hash, subject_id, grantor_id, scope, extractive,
			issued_at, expires_at, prev_hash, signature, anchor_position
		FROM receipts
		WHERE receipt_hash = $1
	`
	receipt, err := scanReceipt(s.execer().QueryRowContext(ctx, query, hash.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find receipt: %w", err)
	}
	return receipt, nil
}

func (s *PostgresStore) FindRevocation(ctx context.Context, hash id.ReceiptHash) (*models.RevocationRecord, error) {
	query := `
		SELECT receipt_hash, revoked_at, signature
		FROM revocations
		WHERE receipt_hash = $1
	`
	var record models.RevocationRecord
	var receiptHash string
	err := s.execer().QueryRowContext(ctx, query, hash.String()).
		Scan(&receiptHash, &record.RevokedAt, &record.Signature)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find revocation: %w", err)
	}
	record.ReceiptHash = id.ReceiptHash(receiptHash)
	record.RevokedAt = record.RevokedAt.UTC()
	return &record, nil
}

// Head returns the subject's latest receipt together with its revocation.
func (s *PostgresStore) Head(ctx context.Context, subjectID id.SubjectID) (*models.HeadState, error) {
	query := headQuery + ` WHERE h.subject_id = $1`
	state, err := scanHeadState(s.execer().QueryRowContext(ctx, query, uuid.UUID(subjectID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find chain head: %w", err)
	}
	return state, nil
}

// ListBySubject returns the subject's chain, genesis first. A subject with
// no receipts yields an empty chain, not an error.
func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.ConsentReceipt, error) {
	query := `
		SELECT receipt_hash, subject_id, grantor_id, scope, extractive,
			issued_at, expires_at, prev_hash, signature, anchor_position
		FROM receipts
		WHERE subject_id = $1
		ORDER BY anchor_position
	`
	rows, err := s.execer().QueryContext(ctx, query, uuid.UUID(subjectID))
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	receipts := make([]*models.ConsentReceipt, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return receipts, nil
}

func (s *PostgresStore) ListSubjects(ctx context.Context) ([]id.SubjectID, error) {
	rows, err := s.execer().QueryContext(ctx, `SELECT subject_id FROM chain_heads ORDER BY subject_id`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]id.SubjectID, 0)
	for rows.Next() {
		var subjectID uuid.UUID
		if err := rows.Scan(&subjectID); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, id.SubjectID(subjectID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}
	return subjects, nil
}

// ListHeads returns one HeadState per subject chain.
func (s *PostgresStore) ListHeads(ctx context.Context) ([]*models.HeadState, error) {
	rows, err := s.execer().QueryContext(ctx, headQuery+` ORDER BY h.subject_id`)
	if err != nil {
		return nil, fmt.Errorf("list chain heads: %w", err)
	}
	defer rows.Close()

	heads := make([]*models.HeadState, 0)
	for rows.Next() {
		state, err := scanHeadState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chain head: %w", err)
		}
		heads = append(heads, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chain heads: %w", err)
	}
	return heads, nil
}

func (s *PostgresStore) CountReceipts(ctx context.Context) (models.ReceiptCounts, error) {
	var counts models.ReceiptCounts
	err := s.execer().QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM receipts), (SELECT COUNT(*) FROM anchors)`,
	).Scan(&counts.Total, &counts.Anchored)
	if err != nil {
		return models.ReceiptCounts{}, fmt.Errorf("count receipts: %w", err)
	}
	return counts, nil
}

const headQuery = `
	SELECT r.receipt_hash, r.subject_id, r.grantor_id, r.scope, r.extractive,
		r.issued_at, r.expires_at, r.prev_hash, r.signature, r.anchor_position,
		v.revoked_at, v.signature
	FROM chain_heads h
	JOIN receipts r ON r.receipt_hash = h.head_hash
	LEFT JOIN revocations v ON v.receipt_hash = r.receipt_hash
`

type receiptRow interface {
	Scan(dest ...any) error
}

// scanReceipt hydrates a receipt row. Timestamps are normalized back to UTC
// so canonical signing bytes recompute byte-identically after a round trip.
func scanReceipt(row receiptRow) (*models.ConsentReceipt, error) {
	var receipt models.ConsentReceipt
	var hash, prevHash string
	var subjectID, grantorID uuid.UUID
	var expiresAt sql.NullTime
	err := row.Scan(
		&hash, &subjectID, &grantorID, pq.Array(&receipt.Scope), &receipt.Extractive,
		&receipt.IssuedAt, &expiresAt, &prevHash, &receipt.Signature, &receipt.AnchorPosition,
	)
	if err != nil {
		return nil, err
	}
	receipt.Hash = id.ReceiptHash(hash)
	receipt.SubjectID = id.SubjectID(subjectID)
	receipt.GrantorID = id.GrantorID(grantorID)
	receipt.PrevHash = id.ReceiptHash(prevHash)
	receipt.IssuedAt = receipt.IssuedAt.UTC()
	if expiresAt.Valid {
		expiry := expiresAt.Time.UTC()
		receipt.ExpiresAt = &expiry
	}
	return &receipt, nil
}

func scanHeadState(row receiptRow) (*models.HeadState, error) {
	var receipt models.ConsentReceipt
	var hash, prevHash string
	var subjectID, grantorID uuid.UUID
	var expiresAt, revokedAt sql.NullTime
	var revocationSig []byte
	err := row.Scan(
		&hash, &subjectID, &grantorID, pq.Array(&receipt.Scope), &receipt.Extractive,
		&receipt.IssuedAt, &expiresAt, &prevHash, &receipt.Signature, &receipt.AnchorPosition,
		&revokedAt, &revocationSig,
	)
	if err != nil {
		return nil, err
	}
	receipt.Hash = id.ReceiptHash(hash)
	receipt.SubjectID = id.SubjectID(subjectID)
	receipt.GrantorID = id.GrantorID(grantorID)
	receipt.PrevHash = id.ReceiptHash(prevHash)
	receipt.IssuedAt = receipt.IssuedAt.UTC()
	if expiresAt.Valid {
		expiry := expiresAt.Time.UTC()
		receipt.ExpiresAt = &expiry
	}

	state := &models.HeadState{Receipt: &receipt}
	if revokedAt.Valid {
		state.Revocation = &models.RevocationRecord{
			ReceiptHash: receipt.Hash,
			RevokedAt:   revokedAt.Time.UTC(),
			Signature:   revocationSig,
		}
	}
	return state, nil
}
