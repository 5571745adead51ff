package handler

import (
	"time"

	"pactum/internal/ingest/models"
)

// IngestResponse is the wire representation of an admitted ingest record.
type IngestResponse struct {
	ID             string    `json:"id"`
	SubjectID      string    `json:"subject_id"`
	RequiredScopes []string  `json:"required_scopes"`
	Extractive     bool      `json:"extractive"`
	ReceiptHash    string    `json:"receipt_hash,omitempty"`
	ArtifactID     string    `json:"artifact_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func toIngestResponse(record *models.IngestRecord) *IngestResponse {
	resp := &IngestResponse{
		ID:             record.ID.String(),
		SubjectID:      record.SubjectID.String(),
		RequiredScopes: record.RequiredScopes,
		Extractive:     record.Extractive,
		ReceiptHash:    record.ReceiptHash.String(),
		OccurredAt:     record.OccurredAt,
	}
	if resp.RequiredScopes == nil {
		resp.RequiredScopes = []string{}
	}
	if record.ArtifactID != nil {
		resp.ArtifactID = record.ArtifactID.String()
	}
	return resp
}
