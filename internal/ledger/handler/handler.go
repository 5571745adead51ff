package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pactum/internal/ledger/models"
	respond "pactum/internal/transport/http/json"
	"pactum/internal/transport/http/shared"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/middleware/auth"
	"pactum/pkg/requestcontext"
)

// Service defines the interface for ledger operations.
type Service interface {
	Append(ctx context.Context, receipt *models.ConsentReceipt, actorID id.GrantorID) (*models.ConsentReceipt, error)
	Revoke(ctx context.Context, hash id.ReceiptHash, signature []byte, actorID id.GrantorID) (*models.RevocationRecord, error)
	Status(ctx context.Context, hash id.ReceiptHash, at *time.Time) (*models.StatusResult, error)
	GetReceipt(ctx context.Context, hash id.ReceiptHash) (*models.ConsentReceipt, error)
	ListSubjectReceipts(ctx context.Context, subjectID id.SubjectID) ([]*models.ConsentReceipt, error)
	VerifyChain(ctx context.Context, subjectID id.SubjectID) (*models.ChainReport, error)
}

// Handler handles receipt ledger endpoints.
type Handler struct {
	logger *slog.Logger
	ledger Service
}

// New creates a new ledger Handler.
func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		ledger: ledger,
	}
}

// Register registers the read-only ledger routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/receipts/{receiptHash}", h.handleGetReceipt)
	r.Get("/receipts/{receiptHash}/status", h.handleGetStatus)
	r.Get("/subjects/{subjectID}/receipts", h.handleListSubjectReceipts)
	r.Get("/subjects/{subjectID}/chain", h.handleVerifyChain)
}

// RegisterProtected registers the mutating ledger routes. The router mounts
// these behind the grantor auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/receipts", h.handleAppendReceipt)
	r.Post("/receipts/{receiptHash}/revocation", h.handleRevokeReceipt)
}

func (h *Handler) handleAppendReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID := auth.GetGrantorID(ctx)
	if actorID.IsNil() {
		h.logger.ErrorContext(ctx, "grantor missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var appendReq AppendReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&appendReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode append receipt request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	appendReq.Normalize()
	if err := appendReq.Validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid append receipt request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	receipt, err := appendReq.ToReceipt()
	if err != nil {
		h.logger.WarnContext(ctx, "malformed receipt in append request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	appended, err := h.ledger.Append(ctx, receipt, actorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to append receipt",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, &AppendResponse{
		ReceiptHash:    appended.Hash.String(),
		AnchorPosition: appended.AnchorPosition,
	})
}

func (h *Handler) handleRevokeReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actorID := auth.GetGrantorID(ctx)
	if actorID.IsNil() {
		h.logger.ErrorContext(ctx, "grantor missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	hash, err := id.ParseReceiptHash(chi.URLParam(r, "receiptHash"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var revokeReq RevokeReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&revokeReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode revoke receipt request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	revokeReq.Normalize()
	if err := revokeReq.Validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid revoke receipt request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	signature, err := revokeReq.DecodeSignature()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.ledger.Revoke(ctx, hash, signature, actorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke receipt",
			"request_id", requestID,
			"receipt_hash", hash,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, &RevocationResponse{
		ReceiptHash: record.ReceiptHash.String(),
		RevokedAt:   record.RevokedAt,
	})
}

func (h *Handler) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hash, err := id.ParseReceiptHash(chi.URLParam(r, "receiptHash"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	receipt, err := h.ledger.GetReceipt(ctx, hash)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load receipt",
			"request_id", requestcontext.RequestID(ctx),
			"receipt_hash", hash,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toReceipt(receipt))
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hash, err := id.ParseReceiptHash(chi.URLParam(r, "receiptHash"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var at *time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "at must be RFC3339"))
			return
		}
		at = &parsed
	}

	result, err := h.ledger.Status(ctx, hash, at)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to derive receipt status",
			"request_id", requestcontext.RequestID(ctx),
			"receipt_hash", hash,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, &StatusResponse{
		ReceiptHash: result.ReceiptHash.String(),
		Status:      result.Status,
		At:          result.At,
		RevokedAt:   result.RevokedAt,
	})
}

func (h *Handler) handleListSubjectReceipts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	receipts, err := h.ledger.ListSubjectReceipts(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list subject receipts",
			"request_id", requestcontext.RequestID(ctx),
			"subject_id", subjectID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toChainResponse(subjectID.String(), receipts))
}

func (h *Handler) handleVerifyChain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, err := h.ledger.VerifyChain(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to verify subject chain",
			"request_id", requestcontext.RequestID(ctx),
			"subject_id", subjectID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toChainReportResponse(report))
}
