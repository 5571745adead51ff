package models

import "time"

// Reciprocity Index Metric names, as exported on gauges and in report JSON.
const (
	MetricConsentCoverage     = "rim_1"
	MetricAttributionCoverage = "rim_2"
	MetricDisclosedReuseRate  = "rim_3"
	MetricExpiringShare       = "rim_4"
	MetricScopedShare         = "rim_5"
	MetricPublicationRate     = "rim_6"
)

// Indices are the six Reciprocity Index Metrics, each rounded to 4 decimals.
type Indices struct {
	// ConsentCoverage (RIM-1) is active-consenting subjects over all
	// registered subjects. 0 with no subjects.
	ConsentCoverage float64
	// AttributionCoverage (RIM-2) is attributed artifacts over extractive
	// ingests. 0 with no extractive ingests.
	AttributionCoverage float64
	// DisclosedReuseRate (RIM-3) is disclosed reuses over all reuses. 1
	// with an empty reuse log: nothing was reused, nothing was hidden.
	DisclosedReuseRate float64
	// ExpiringShare (RIM-4) is the share of active consents that carry an
	// expiry. 0 with no active consents.
	ExpiringShare float64
	// ScopedShare (RIM-5) is the share of active consents that carry a
	// non-empty scope. 0 with no active consents.
	ScopedShare float64
	// PublicationRate (RIM-6) is ever-published artifacts over extractive
	// ingests. Ever-published survives archiving. 0 with no extractive
	// ingests.
	PublicationRate float64
}

// Counts are the raw figures behind the indices.
type Counts struct {
	TotalSubjects            int64
	ActiveConsentingSubjects int64
	ExtractiveIngests        int64
	EverPublishedArtifacts   int64
	AttributedArtifacts      int64
	TotalReuses              int64
	SilentReuses             int64
	// ArtifactStates holds current-state tallies keyed by lifecycle state
	// name. Every state appears, zero or not.
	ArtifactStates map[string]int64
	TotalReceipts  int64
	// AnchoredReceipts should equal TotalReceipts; a difference indicates
	// a torn anchor append.
	AnchoredReceipts int64
}

// Report is one reciprocity evaluation of the whole system as of a moment in
// time.
type Report struct {
	At      time.Time
	Indices Indices
	Counts  Counts
}
