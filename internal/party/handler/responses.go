package handler

import (
	"encoding/base64"
	"time"

	"pactum/internal/party/models"
)

// PartyResponse represents a registered party in HTTP responses. Secret
// hashes never leave the service.
type PartyResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	DisplayName string    `json:"display_name"`
	PublicKey   string    `json:"public_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegisterPartyResponse is returned once at registration. APISecret is only
// present for grantors and is never retrievable again.
type RegisterPartyResponse struct {
	PartyResponse
	APISecret string `json:"api_secret,omitempty"`
}

func toPartyResponse(party *models.Party) PartyResponse {
	resp := PartyResponse{
		ID:          party.ID.String(),
		Kind:        string(party.Kind),
		DisplayName: party.DisplayName,
		CreatedAt:   party.CreatedAt,
	}
	if len(party.PublicKey) > 0 {
		resp.PublicKey = base64.StdEncoding.EncodeToString(party.PublicKey)
	}
	return resp
}
