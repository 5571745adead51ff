//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"pactum/internal/reuse/models"
	"pactum/internal/reuse/store"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/testutil"
	"pactum/pkg/testutil/containers"
)

type PostgresReuseSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresReuseSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresReuseSuite))
}

func (s *PostgresReuseSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresReuseSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "reuse_events")
	s.Require().NoError(err)
}

func (s *PostgresReuseSuite) newEvent(artifactID id.ArtifactID, disclosed bool, at time.Time) *models.ReuseEvent {
	event, err := models.NewReuseEvent(id.ReuseID(uuid.New()), artifactID, disclosed, at)
	s.Require().NoError(err)
	return event
}

func (s *PostgresReuseSuite) TestRoundTrip() {
	ctx := context.Background()
	event := s.newEvent(testutil.TestIDs.ArtifactID1, true, testutil.BaseTime)

	s.Require().NoError(s.store.Create(ctx, event))

	fetched, err := s.store.FindByID(ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(event.ArtifactID, fetched.ArtifactID)
	s.True(fetched.Disclosed)
	s.True(fetched.OccurredAt.Equal(testutil.BaseTime))
}

func (s *PostgresReuseSuite) TestFindUnknown() {
	_, err := s.store.FindByID(context.Background(), id.ReuseID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresReuseSuite) TestUnknownArtifactIsAccepted() {
	// The table carries no FK to artifacts: logging reuse of an artifact
	// the registry never minted must succeed.
	ctx := context.Background()
	event := s.newEvent(id.ArtifactID(uuid.New()), false, testutil.BaseTime)

	s.Require().NoError(s.store.Create(ctx, event))

	counts, err := s.store.CountReuses(ctx)
	s.Require().NoError(err)
	s.Equal(models.ReuseCounts{Total: 1, Silent: 1}, counts)
}

func (s *PostgresReuseSuite) TestListByArtifactOrdersByTime() {
	ctx := context.Background()
	artifactID := testutil.TestIDs.ArtifactID1
	second := s.newEvent(artifactID, false, testutil.BaseTime.Add(time.Minute))
	first := s.newEvent(artifactID, true, testutil.BaseTime)
	s.Require().NoError(s.store.Create(ctx, second))
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, s.newEvent(testutil.TestIDs.ArtifactID2, true, testutil.BaseTime)))

	events, err := s.store.ListByArtifact(ctx, artifactID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(first.ID, events[0].ID)
	s.Equal(second.ID, events[1].ID)
}

func (s *PostgresReuseSuite) TestCountReuses() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newEvent(testutil.TestIDs.ArtifactID1, true, testutil.BaseTime)))
	s.Require().NoError(s.store.Create(ctx, s.newEvent(testutil.TestIDs.ArtifactID1, false, testutil.BaseTime)))
	s.Require().NoError(s.store.Create(ctx, s.newEvent(testutil.TestIDs.ArtifactID2, false, testutil.BaseTime)))

	counts, err := s.store.CountReuses(ctx)
	s.Require().NoError(err)
	s.Equal(models.ReuseCounts{Total: 3, Silent: 2}, counts)
}
