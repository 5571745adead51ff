package handler

import (
	"time"

	"pactum/internal/artifact/models"
)

// ArtifactResponse is the wire representation of an artifact.
type ArtifactResponse struct {
	ID            string    `json:"id"`
	State         string    `json:"state"`
	EverPublished bool      `json:"ever_published"`
	Attributions  []string  `json:"attributions"`
	CreatedAt     time.Time `json:"created_at"`
}

// ArtifactListResponse wraps a filtered artifact listing.
type ArtifactListResponse struct {
	Artifacts []*ArtifactResponse `json:"artifacts"`
}

func toArtifactListResponse(artifacts []*models.Artifact) *ArtifactListResponse {
	formatted := make([]*ArtifactResponse, 0, len(artifacts))
	for _, artifact := range artifacts {
		formatted = append(formatted, toArtifactResponse(artifact))
	}
	return &ArtifactListResponse{Artifacts: formatted}
}

func toArtifactResponse(artifact *models.Artifact) *ArtifactResponse {
	attributions := make([]string, 0, len(artifact.Attributions))
	for _, subjectID := range artifact.Attributions {
		attributions = append(attributions, subjectID.String())
	}
	return &ArtifactResponse{
		ID:            artifact.ID.String(),
		State:         string(artifact.State),
		EverPublished: artifact.EverPublished,
		Attributions:  attributions,
		CreatedAt:     artifact.CreatedAt,
	}
}
