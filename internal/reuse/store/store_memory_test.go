package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pactum/internal/reuse/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
)

var storeTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newEvent(t *testing.T, artifactID id.ArtifactID, disclosed bool, at time.Time) *models.ReuseEvent {
	t.Helper()
	event, err := models.NewReuseEvent(id.ReuseID(uuid.New()), artifactID, disclosed, at)
	require.NoError(t, err)
	return event
}

func TestCreateAndFind(t *testing.T) {
	store := New()
	ctx := context.Background()
	artifactID := id.ArtifactID(uuid.New())
	event := newEvent(t, artifactID, true, storeTime)

	require.NoError(t, store.Create(ctx, event))

	fetched, err := store.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, artifactID, fetched.ArtifactID)
	assert.True(t, fetched.Disclosed)
	assert.True(t, fetched.OccurredAt.Equal(storeTime))
}

func TestCreateDuplicateID(t *testing.T) {
	store := New()
	ctx := context.Background()
	event := newEvent(t, id.ArtifactID(uuid.New()), false, storeTime)

	require.NoError(t, store.Create(ctx, event))
	assert.ErrorIs(t, store.Create(ctx, event), sentinel.ErrConflict)
}

func TestFindUnknown(t *testing.T) {
	store := New()
	_, err := store.FindByID(context.Background(), id.ReuseID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestListByArtifact(t *testing.T) {
	store := New()
	ctx := context.Background()
	artifactID := id.ArtifactID(uuid.New())

	second := newEvent(t, artifactID, false, storeTime.Add(time.Minute))
	first := newEvent(t, artifactID, true, storeTime)
	other := newEvent(t, id.ArtifactID(uuid.New()), true, storeTime)
	require.NoError(t, store.Create(ctx, second))
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, other))

	events, err := store.ListByArtifact(ctx, artifactID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)
}

func TestListByArtifactEmpty(t *testing.T) {
	store := New()
	events, err := store.ListByArtifact(context.Background(), id.ArtifactID(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCountReuses(t *testing.T) {
	store := New()
	ctx := context.Background()

	counts, err := store.CountReuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ReuseCounts{}, counts)

	artifactID := id.ArtifactID(uuid.New())
	require.NoError(t, store.Create(ctx, newEvent(t, artifactID, true, storeTime)))
	require.NoError(t, store.Create(ctx, newEvent(t, artifactID, false, storeTime)))
	require.NoError(t, store.Create(ctx, newEvent(t, artifactID, false, storeTime)))

	counts, err = store.CountReuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ReuseCounts{Total: 3, Silent: 2}, counts)
}

func TestStoredEventIsACopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	event := newEvent(t, id.ArtifactID(uuid.New()), true, storeTime)

	require.NoError(t, store.Create(ctx, event))
	event.Disclosed = false

	fetched, err := store.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Disclosed)
}
