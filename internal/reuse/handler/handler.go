package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pactum/internal/reuse/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/httputil"
	"pactum/pkg/requestcontext"
)

// Service defines the interface for the reuse disclosure log.
type Service interface {
	LogReuse(ctx context.Context, artifactID id.ArtifactID, disclosed bool, actorID id.GrantorID) (*models.ReuseEvent, error)
}

// Handler handles reuse log endpoints.
type Handler struct {
	logger *slog.Logger
	reuses Service
}

// New creates a new reuse Handler.
func New(reuses Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		reuses: reuses,
	}
}

// RegisterProtected registers the reuse routes. The router mounts these
// behind the grantor auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/reuses", h.handleLogReuse)
}

func (h *Handler) handleLogReuse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID, err := httputil.RequireGrantorID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reuseReq, ok := httputil.DecodeAndPrepare[LogReuseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	artifactID, err := reuseReq.ParseArtifactID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.reuses.LogReuse(ctx, artifactID, reuseReq.Disclosed, actorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to log reuse",
			"request_id", requestID,
			"artifact_id", artifactID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toReuseResponse(event))
}
