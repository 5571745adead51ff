package handler

import (
	"time"

	"pactum/internal/reuse/models"
)

// ReuseResponse is the wire representation of a logged reuse event.
type ReuseResponse struct {
	ID         string    `json:"id"`
	ArtifactID string    `json:"artifact_id"`
	Disclosed  bool      `json:"disclosed"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toReuseResponse(event *models.ReuseEvent) *ReuseResponse {
	return &ReuseResponse{
		ID:         event.ID.String(),
		ArtifactID: event.ArtifactID.String(),
		Disclosed:  event.Disclosed,
		OccurredAt: event.OccurredAt,
	}
}
