package handler

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pactum/internal/party/models"
	respond "pactum/internal/transport/http/json"
	"pactum/internal/transport/http/shared"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/requestcontext"
)

// Service defines the interface for party registry operations.
type Service interface {
	Register(ctx context.Context, kind models.Kind, displayName string, publicKey ed25519.PublicKey) (*models.Party, string, error)
	Get(ctx context.Context, partyID id.PartyID) (*models.Party, error)
}

// Handler handles party registry endpoints.
type Handler struct {
	logger  *slog.Logger
	parties Service
}

// New creates a new party Handler.
func New(parties Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		parties: parties,
	}
}

// Register registers the party routes with the chi router. Registration is
// public: it is how a grantor obtains its first credentials.
func (h *Handler) Register(r chi.Router) {
	r.Post("/parties", h.handleRegisterParty)
	r.Get("/parties/{partyID}", h.handleGetParty)
}

func (h *Handler) handleRegisterParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var registerReq RegisterPartyRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register party request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	registerReq.Normalize()
	if err := registerReq.Validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid register party request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	publicKey, err := registerReq.DecodeKey()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	party, secret, err := h.parties.Register(ctx, registerReq.ToKind(), registerReq.DisplayName, publicKey)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to register party",
			"request_id", requestID,
			"kind", registerReq.Kind,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, &RegisterPartyResponse{
		PartyResponse: toPartyResponse(party),
		APISecret:     secret,
	})
}

func (h *Handler) handleGetParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	partyID, err := id.ParsePartyID(chi.URLParam(r, "partyID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	party, err := h.parties.Get(ctx, partyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	response := toPartyResponse(party)
	respond.WriteJSON(w, http.StatusOK, &response)
}
