package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pactum/internal/artifact/models"
	"pactum/internal/artifact/store"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/httputil"
	"pactum/pkg/requestcontext"
)

// Service defines the interface for artifact lifecycle operations.
type Service interface {
	Get(ctx context.Context, artifactID id.ArtifactID) (*models.Artifact, error)
	List(ctx context.Context, filter store.ListFilter) ([]*models.Artifact, error)
	Transition(ctx context.Context, artifactID id.ArtifactID, to models.State, actorID id.GrantorID) (*models.Artifact, error)
	Attribute(ctx context.Context, artifactID id.ArtifactID, subjectID id.SubjectID, actorID id.GrantorID) (*models.Artifact, error)
}

// Handler handles artifact lifecycle endpoints.
type Handler struct {
	logger    *slog.Logger
	artifacts Service
}

// New creates a new artifact Handler.
func New(artifacts Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		artifacts: artifacts,
	}
}

// Register registers the read-only artifact routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/artifacts", h.handleListArtifacts)
	r.Get("/artifacts/{artifactID}", h.handleGetArtifact)
}

// RegisterProtected registers the mutating artifact routes. The router
// mounts these behind the grantor auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/artifacts/{artifactID}/transition", h.handleTransition)
	r.Post("/artifacts/{artifactID}/attribution", h.handleAttribute)
}

func (h *Handler) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	artifactID, err := id.ParseArtifactID(chi.URLParam(r, "artifactID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	artifact, err := h.artifacts.Get(ctx, artifactID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load artifact",
			"request_id", requestcontext.RequestID(ctx),
			"artifact_id", artifactID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toArtifactResponse(artifact))
}

func (h *Handler) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter store.ListFilter
	if raw := r.URL.Query().Get("state"); raw != "" {
		state := models.State(raw)
		if !state.IsValid() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown artifact state"))
			return
		}
		filter.State = &state
	}

	artifacts, err := h.artifacts.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list artifacts",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toArtifactListResponse(artifacts))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID, err := httputil.RequireGrantorID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	artifactID, err := id.ParseArtifactID(chi.URLParam(r, "artifactID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	transitionReq, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	artifact, err := h.artifacts.Transition(ctx, artifactID, transitionReq.ToState(), actorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to transition artifact",
			"request_id", requestID,
			"artifact_id", artifactID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toArtifactResponse(artifact))
}

func (h *Handler) handleAttribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID, err := httputil.RequireGrantorID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	artifactID, err := id.ParseArtifactID(chi.URLParam(r, "artifactID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	attributeReq, ok := httputil.DecodeAndPrepare[AttributeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subjectID, err := attributeReq.ParseSubjectID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	artifact, err := h.artifacts.Attribute(ctx, artifactID, subjectID, actorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to attribute artifact",
			"request_id", requestID,
			"artifact_id", artifactID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toArtifactResponse(artifact))
}
