package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pactum/internal/ingest/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

var storeTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newRecord(t *testing.T, extractive bool) *models.IngestRecord {
	t.Helper()
	record, err := models.NewIngestRecord(
		id.IngestID(uuid.New()),
		id.SubjectID(uuid.New()),
		[]string{"analytics"},
		extractive,
		storeTime,
	)
	require.NoError(t, err)
	return record
}

func TestCreateAndFind(t *testing.T) {
	store := New()
	ctx := context.Background()
	record := newRecord(t, true)
	record.ReceiptHash = id.ReceiptHash("deadbeef")
	artifactID := id.ArtifactID(uuid.New())
	record.ArtifactID = &artifactID

	require.NoError(t, store.Create(ctx, record))

	fetched, err := store.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.SubjectID, fetched.SubjectID)
	assert.Equal(t, []string{"analytics"}, fetched.RequiredScopes)
	assert.Equal(t, id.ReceiptHash("deadbeef"), fetched.ReceiptHash)
	require.NotNil(t, fetched.ArtifactID)
	assert.Equal(t, artifactID, *fetched.ArtifactID)
	assert.True(t, fetched.OccurredAt.Equal(storeTime))
}

func TestCreateDuplicateID(t *testing.T) {
	store := New()
	ctx := context.Background()
	record := newRecord(t, false)

	require.NoError(t, store.Create(ctx, record))
	assert.ErrorIs(t, store.Create(ctx, record), sentinel.ErrConflict)
}

func TestFindUnknown(t *testing.T) {
	store := New()
	_, err := store.FindByID(context.Background(), id.IngestID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCountExtractive(t *testing.T) {
	store := New()
	ctx := context.Background()

	count, err := store.CountExtractive(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Create(ctx, newRecord(t, true)))
	require.NoError(t, store.Create(ctx, newRecord(t, true)))
	require.NoError(t, store.Create(ctx, newRecord(t, false)))

	count, err = store.CountExtractive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStoredRecordIsACopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	record := newRecord(t, true)

	require.NoError(t, store.Create(ctx, record))
	record.RequiredScopes[0] = "mutated"

	fetched, err := store.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"analytics"}, fetched.RequiredScopes)

	fetched.RequiredScopes[0] = "mutated-again"
	refetched, err := store.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"analytics"}, refetched.RequiredScopes)
}
