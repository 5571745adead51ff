package handler

import (
	"time"

	"pactum/internal/reciprocity/models"
)

// ReportResponse is the wire representation of a reciprocity report. The six
// indices are keyed by their RIM names; the counts behind them ride along so
// a reader can check the arithmetic.
type ReportResponse struct {
	At                       time.Time          `json:"at"`
	Indices                  map[string]float64 `json:"indices"`
	TotalSubjects            int64              `json:"total_subjects"`
	ActiveConsentingSubjects int64              `json:"active_consenting_subjects"`
	ExtractiveIngests        int64              `json:"extractive_ingests"`
	EverPublishedArtifacts   int64              `json:"ever_published_artifacts"`
	AttributedArtifacts      int64              `json:"attributed_artifacts"`
	TotalReuses              int64              `json:"total_reuses"`
	SilentReuses             int64              `json:"silent_reuses"`
	ArtifactStates           map[string]int64   `json:"artifact_states"`
	TotalReceipts            int64              `json:"total_receipts"`
	AnchoredReceipts         int64              `json:"anchored_receipts"`
}

func toReportResponse(report *models.Report) *ReportResponse {
	return &ReportResponse{
		At: report.At,
		Indices: map[string]float64{
			models.MetricConsentCoverage:     report.Indices.ConsentCoverage,
			models.MetricAttributionCoverage: report.Indices.AttributionCoverage,
			models.MetricDisclosedReuseRate:  report.Indices.DisclosedReuseRate,
			models.MetricExpiringShare:       report.Indices.ExpiringShare,
			models.MetricScopedShare:         report.Indices.ScopedShare,
			models.MetricPublicationRate:     report.Indices.PublicationRate,
		},
		TotalSubjects:            report.Counts.TotalSubjects,
		ActiveConsentingSubjects: report.Counts.ActiveConsentingSubjects,
		ExtractiveIngests:        report.Counts.ExtractiveIngests,
		EverPublishedArtifacts:   report.Counts.EverPublishedArtifacts,
		AttributedArtifacts:      report.Counts.AttributedArtifacts,
		TotalReuses:              report.Counts.TotalReuses,
		SilentReuses:             report.Counts.SilentReuses,
		ArtifactStates:           report.Counts.ArtifactStates,
		TotalReceipts:            report.Counts.TotalReceipts,
		AnchoredReceipts:         report.Counts.AnchoredReceipts,
	}
}
