package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	artifactmodels "pactum/internal/artifact/models"
	artifactservice "pactum/internal/artifact/service"
	artifactstore "pactum/internal/artifact/store"
	"pactum/internal/reuse/service"
	"pactum/internal/reuse/store"
	id "pactum/pkg/domain"
	"pactum/pkg/requestcontext"
	"pactum/pkg/testutil"
)

// ReuseHandlerSuite drives the handler against the real log service and
// in-memory stores.
type ReuseHandlerSuite struct {
	suite.Suite
	router    http.Handler
	artifacts *artifactservice.Service
	actorID   id.GrantorID
}

func (s *ReuseHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.artifacts = artifactservice.New(artifactstore.New(), artifactservice.WithLogger(logger))
	svc := service.New(store.New(), s.artifacts, service.WithLogger(logger))
	s.actorID = testutil.TestIDs.GrantorID1

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Group(h.RegisterProtected)
	s.router = r
}

func TestReuseHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReuseHandlerSuite))
}

func (s *ReuseHandlerSuite) doRequest(body any, asGrantor bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(http.MethodPost, "/reuses", reader)
	req.Header.Set("Content-Type", "application/json")
	if asGrantor {
		req = req.WithContext(requestcontext.WithGrantorID(req.Context(), s.actorID))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ReuseHandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	code, _ := resp["error"].(string)
	return code
}

func (s *ReuseHandlerSuite) TestLogReuse() {
	artifact, err := s.artifacts.CreateAttributed(context.Background(), testutil.TestIDs.SubjectID1, s.actorID)
	s.Require().NoError(err)

	rec := s.doRequest(LogReuseRequest{ArtifactID: artifact.ID.String(), Disclosed: true}, true)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resp ReuseResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.NotEmpty(resp.ID)
	s.Equal(artifact.ID.String(), resp.ArtifactID)
	s.True(resp.Disclosed)

	bumped, err := s.artifacts.Get(context.Background(), artifact.ID)
	s.Require().NoError(err)
	s.Equal(artifactmodels.StateUsed, bumped.State)
}

func (s *ReuseHandlerSuite) TestLogReuseUnknownArtifact() {
	rec := s.doRequest(LogReuseRequest{ArtifactID: uuid.NewString(), Disclosed: false}, true)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *ReuseHandlerSuite) TestLogReuseMalformedArtifactID() {
	rec := s.doRequest(LogReuseRequest{ArtifactID: "not-a-uuid"}, true)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("validation_error", s.errorCode(rec))
}

func (s *ReuseHandlerSuite) TestLogReuseWithoutGrantorContext() {
	rec := s.doRequest(LogReuseRequest{ArtifactID: uuid.NewString()}, false)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("internal_error", s.errorCode(rec))
}

func (s *ReuseHandlerSuite) TestLogReuseMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/reuses", bytes.NewBufferString("{not json"))
	req = req.WithContext(requestcontext.WithGrantorID(req.Context(), s.actorID))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("bad_request", s.errorCode(rec))
}
