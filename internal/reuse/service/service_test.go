package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	artifactmodels "pactum/internal/artifact/models"
	artifactservice "pactum/internal/artifact/service"
	artifactstore "pactum/internal/artifact/store"
	"pactum/internal/reuse/store"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/requestcontext"
	"pactum/pkg/testutil"
)

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

// ReuseServiceSuite drives the log against the real stores and the real
// artifact service, so the generated-to-used bump is exercised end to end.
type ReuseServiceSuite struct {
	suite.Suite
	auditor   *recordingAuditor
	artifacts *artifactservice.Service
	service   *Service
	ctx       context.Context
	actorID   id.GrantorID
}

func (s *ReuseServiceSuite) SetupTest() {
	s.auditor = &recordingAuditor{}
	s.artifacts = artifactservice.New(artifactstore.New(), artifactservice.WithAuditor(s.auditor))
	s.service = New(store.New(), s.artifacts, WithAuditor(s.auditor))
	s.ctx = requestcontext.WithTime(context.Background(), testutil.BaseTime)
	s.actorID = testutil.TestIDs.GrantorID1
}

func TestReuseServiceSuite(t *testing.T) {
	suite.Run(t, new(ReuseServiceSuite))
}

func (s *ReuseServiceSuite) mintArtifact() *artifactmodels.Artifact {
	artifact, err := s.artifacts.CreateAttributed(context.Background(), testutil.TestIDs.SubjectID1, s.actorID)
	s.Require().NoError(err)
	return artifact
}

func (s *ReuseServiceSuite) TestLogReuseBumpsGeneratedArtifact() {
	artifact := s.mintArtifact()

	event, err := s.service.LogReuse(s.ctx, artifact.ID, true, s.actorID)

	s.Require().NoError(err)
	s.False(event.ID.IsNil())
	s.Equal(artifact.ID, event.ArtifactID)
	s.True(event.Disclosed)
	s.Equal(testutil.BaseTime, event.OccurredAt)

	bumped, err := s.artifacts.Get(context.Background(), artifact.ID)
	s.Require().NoError(err)
	s.Equal(artifactmodels.StateUsed, bumped.State)
}

func (s *ReuseServiceSuite) TestLogReuseAuditTrail() {
	artifact := s.mintArtifact()
	s.auditor.events = nil

	_, err := s.service.LogReuse(s.ctx, artifact.ID, false, s.actorID)

	s.Require().NoError(err)
	// One transition event from the bump, one reuse event from the log.
	s.Require().Len(s.auditor.events, 2)
	reuse := s.auditor.events[1]
	s.Equal(string(audit.EventReuseLogged), reuse.Action)
	s.Equal(audit.CategoryCompliance, reuse.Category)
	s.Equal(artifact.ID.String(), reuse.Subject)
	s.Equal("silent", reuse.Decision)
	s.Equal(s.actorID.String(), reuse.ActorID)
}

func (s *ReuseServiceSuite) TestLogReuseLeavesUsedArtifactAlone() {
	artifact := s.mintArtifact()
	_, err := s.service.LogReuse(s.ctx, artifact.ID, true, s.actorID)
	s.Require().NoError(err)

	_, err = s.service.LogReuse(s.ctx, artifact.ID, true, s.actorID)

	s.Require().NoError(err)
	current, err := s.artifacts.Get(context.Background(), artifact.ID)
	s.Require().NoError(err)
	s.Equal(artifactmodels.StateUsed, current.State)

	events, err := s.service.ListByArtifact(s.ctx, artifact.ID)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *ReuseServiceSuite) TestLogReuseLeavesPublishedArtifactAlone() {
	artifact := s.mintArtifact()
	_, err := s.artifacts.Transition(context.Background(), artifact.ID, artifactmodels.StateUsed, s.actorID)
	s.Require().NoError(err)
	_, err = s.artifacts.Transition(context.Background(), artifact.ID, artifactmodels.StatePublished, s.actorID)
	s.Require().NoError(err)

	_, err = s.service.LogReuse(s.ctx, artifact.ID, false, s.actorID)

	s.Require().NoError(err)
	current, err := s.artifacts.Get(context.Background(), artifact.ID)
	s.Require().NoError(err)
	s.Equal(artifactmodels.StatePublished, current.State)
}

func (s *ReuseServiceSuite) TestLogReuseUnknownArtifact() {
	// No registry entry, still logged.
	unknownID := id.ArtifactID(uuid.New())

	event, err := s.service.LogReuse(s.ctx, unknownID, false, s.actorID)

	s.Require().NoError(err)
	s.Equal(unknownID, event.ArtifactID)

	events, err := s.service.ListByArtifact(s.ctx, unknownID)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *ReuseServiceSuite) TestLogReuseMissingActor() {
	event, err := s.service.LogReuse(s.ctx, testutil.TestIDs.ArtifactID1, true, id.GrantorID{})

	s.Nil(event)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ReuseServiceSuite) TestLogReuseMissingArtifactID() {
	event, err := s.service.LogReuse(s.ctx, id.ArtifactID{}, true, s.actorID)

	s.Nil(event)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ReuseServiceSuite) TestListByArtifactOrders() {
	artifact := s.mintArtifact()
	_, err := s.service.LogReuse(s.ctx, artifact.ID, true, s.actorID)
	s.Require().NoError(err)
	later := requestcontext.WithTime(context.Background(), testutil.BaseTime.Add(time.Minute))
	_, err = s.service.LogReuse(later, artifact.ID, false, s.actorID)
	s.Require().NoError(err)

	events, err := s.service.ListByArtifact(s.ctx, artifact.ID)

	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.True(events[0].Disclosed)
	s.False(events[1].Disclosed)
}
