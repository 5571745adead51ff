package audit

import (
	"time"

	id "pactum/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention (e.g., 7 years).
	// Examples: receipt appends, revocations, ingest admissions, attributions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and forensics.
	// These feed into SIEM systems and alerting pipelines.
	// Examples: rejected appends, denied ingests, failed signature checks.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational visibility.
	// These can be sampled or aggregated with shorter retention.
	// Examples: chain verifications, artifact transitions, report computations.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	SubjectID id.SubjectID
	// Subject is the entity the event is about when it is not a data
	// subject: a receipt hash, an artifact ID, a party ID.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string // Correlation ID from HTTP request context
	// ActorID tracks who performed the action when different from the
	// data subject, typically the authenticated grantor. This is a
	// string to support various actor identification schemes.
	ActorID string
	// Client is a short human-readable descriptor of the calling client,
	// derived from the User-Agent header. Security events carry it for
	// forensics; the raw header is never stored.
	Client string
}

type AuditEvent string

const (
	// Party events
	EventPartyRegistered AuditEvent = "party_registered"

	// Ledger events
	EventReceiptAppended    AuditEvent = "receipt_appended"
	EventReceiptRevoked     AuditEvent = "receipt_revoked"
	EventAppendRejected     AuditEvent = "append_rejected"
	EventRevocationRejected AuditEvent = "revocation_rejected"
	EventChainVerified      AuditEvent = "chain_verified"

	// Ingest events
	EventIngestAdmitted AuditEvent = "ingest_admitted"
	EventIngestDenied   AuditEvent = "ingest_denied"

	// Artifact events
	EventArtifactCreated      AuditEvent = "artifact_created"
	EventArtifactTransitioned AuditEvent = "artifact_transitioned"
	EventArtifactAttributed   AuditEvent = "artifact_attributed"
	EventReuseLogged          AuditEvent = "reuse_logged"

	// Reporting events
	EventReportComputed AuditEvent = "report_computed"

	// Auth events
	EventAuthFailed AuditEvent = "auth_failed"
)

// eventCategories maps each audit event to its category.
// Compliance: legal/regulatory significance, long retention required.
// Security: security monitoring, SIEM integration, alerting.
// Operations: debugging, operational visibility, can be sampled.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - require tamper-proof storage
	EventPartyRegistered:    CategoryCompliance,
	EventReceiptAppended:    CategoryCompliance,
	EventReceiptRevoked:     CategoryCompliance,
	EventIngestAdmitted:     CategoryCompliance,
	EventArtifactAttributed: CategoryCompliance,
	EventReuseLogged:        CategoryCompliance,

	// Security events - feed into SIEM and alerting
	EventAppendRejected:     CategorySecurity,
	EventRevocationRejected: CategorySecurity,
	EventIngestDenied:       CategorySecurity,
	EventAuthFailed:         CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventChainVerified:        CategoryOperations,
	EventArtifactCreated:      CategoryOperations,
	EventArtifactTransitioned: CategoryOperations,
	EventReportComputed:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// -----------------------------------------------------------------------------
// Right-sized event types for tri-publisher architecture
// -----------------------------------------------------------------------------

// ComplianceEvent captures regulatory-significant actions requiring guaranteed persistence.
// Fields are chosen to satisfy GDPR Article 30 and similar record-keeping requirements.
// Use with the compliance publisher for fail-closed semantics.
type ComplianceEvent struct {
	Timestamp time.Time    // When the event occurred (set automatically if zero)
	SubjectID id.SubjectID // The data subject affected (required)
	Subject   string       // Entity identifier (receipt hash, artifact ID)
	Action    string       // The action taken (e.g., "receipt_appended")
	Decision  string       // Outcome of the action (e.g., "appended", "revoked")
	RequestID string       // Correlation ID for request tracing
	ActorID   string       // Grantor or operator who performed the action
}

// Category returns CategoryCompliance (always).
func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

// ToLegacyEvent converts to the legacy Event type for backwards compatibility.
func (e ComplianceEvent) ToLegacyEvent() Event {
	return Event{
		Category:  CategoryCompliance,
		Timestamp: e.Timestamp,
		SubjectID: e.SubjectID,
		Subject:   e.Subject,
		Action:    e.Action,
		Decision:  e.Decision,
		RequestID: e.RequestID,
		ActorID:   e.ActorID,
	}
}

// SecurityEvent captures security-relevant actions for SIEM and alerting.
// Events are processed asynchronously with buffering and retry.
// Use with the security publisher for non-blocking emission.
type SecurityEvent struct {
	Timestamp time.Time // When the event occurred (set automatically if zero)
	Subject   string    // Entity involved (receipt hash, subject ID, grantor ID)
	Action    string    // Security action (e.g., "append_rejected")
	Reason    string    // Why this happened (e.g., "invalid_signature", "chain_mismatch")
	IP        string    // Client IP address (critical for security forensics)
	RequestID string    // Correlation ID
	ActorID   string    // Actor if different from subject
	Severity  Severity  // "info", "warning", "critical" for SIEM routing
}

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Category returns CategorySecurity (always).
func (e SecurityEvent) Category() EventCategory { return CategorySecurity }

// ToLegacyEvent converts to the legacy Event type for backwards compatibility.
func (e SecurityEvent) ToLegacyEvent() Event {
	return Event{
		Category:  CategorySecurity,
		Timestamp: e.Timestamp,
		Subject:   e.Subject,
		Action:    e.Action,
		Reason:    e.Reason,
		RequestID: e.RequestID,
		ActorID:   e.ActorID,
	}
}

// OpsEvent captures operational events with minimal overhead.
// Events are fire-and-forget with optional sampling.
// Use with the ops publisher for non-blocking, sampled emission.
type OpsEvent struct {
	Timestamp time.Time // When the event occurred (set automatically if zero)
	Subject   string    // Entity involved
	Action    string    // Operational action (e.g., "chain_verified")
	RequestID string    // Correlation ID
}

// Category returns CategoryOperations (always).
func (e OpsEvent) Category() EventCategory { return CategoryOperations }

// ToLegacyEvent converts to the legacy Event type for backwards compatibility.
func (e OpsEvent) ToLegacyEvent() Event {
	return Event{
		Category:  CategoryOperations,
		Timestamp: e.Timestamp,
		Subject:   e.Subject,
		Action:    e.Action,
		RequestID: e.RequestID,
	}
}
