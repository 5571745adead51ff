package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pactum/internal/ingest/models"
	id "pactum/pkg/domain"
	"pactum/pkg/platform/httputil"
	"pactum/pkg/requestcontext"
)

// Service defines the interface for the ingest gate.
type Service interface {
	Ingest(ctx context.Context, subjectID id.SubjectID, requiredScopes []string, extractive bool, actorID id.GrantorID) (*models.IngestRecord, error)
}

// Handler handles ingest gate endpoints.
type Handler struct {
	logger  *slog.Logger
	ingests Service
}

// New creates a new ingest Handler.
func New(ingests Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		ingests: ingests,
	}
}

// RegisterProtected registers the ingest routes. Every ingest is declared by
// an authenticated grantor, so the router mounts these behind the auth
// middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/ingests", h.handleIngest)
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID, err := httputil.RequireGrantorID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ingestReq, ok := httputil.DecodeAndPrepare[IngestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subjectID, err := ingestReq.ParseSubjectID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.ingests.Ingest(ctx, subjectID, ingestReq.RequiredScopes, ingestReq.Extractive, actorID)
	if err != nil {
		h.logger.WarnContext(ctx, "ingest not admitted",
			"request_id", requestID,
			"subject_id", subjectID,
			"extractive", ingestReq.Extractive,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toIngestResponse(record))
}
