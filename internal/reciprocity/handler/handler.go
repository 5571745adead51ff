package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pactum/internal/reciprocity/models"
	respond "pactum/internal/transport/http/json"
	"pactum/internal/transport/http/shared"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/requestcontext"
)

// Service defines the interface for reciprocity reporting.
type Service interface {
	Report(ctx context.Context, at time.Time) (*models.Report, error)
}

// Handler handles the reciprocity report endpoint.
type Handler struct {
	logger  *slog.Logger
	reports Service
}

// New creates a new reciprocity Handler.
func New(reports Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		reports: reports,
	}
}

// Register registers the report route with the chi router. The report is a
// read and stays public, like the other GET routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reciprocity/report", h.handleReport)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	at := requestcontext.Now(ctx).UTC()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "at must be RFC3339"))
			return
		}
		at = parsed
	}

	report, err := h.reports.Report(ctx, at)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute reciprocity report",
			"request_id", requestcontext.RequestID(ctx),
			"at", at,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toReportResponse(report))
}
