package audit

import (
	"context"
	"log/slog"

	id "pactum/pkg/domain"
	"pactum/pkg/platform/attrs"
	"pactum/pkg/requestcontext"
)

// Emitter persists audit events; publisher.Publisher satisfies it.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger is the one audit entry point the services use: every call writes
// a structured log line and, when an emitter is wired, stages a durable
// event through the outbox.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger builds an audit logger. A nil emitter keeps text logging only,
// which is how the memory-store assembly runs.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log records one audit event, enriched with the request ID from context.
//
//	logger.Log(ctx, "receipt_appended", "subject_id", subjectID.String(), "receipt_hash", hash)
func (l *Logger) Log(ctx context.Context, event string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}

	l.logToText(ctx, event, attributes)
	l.emitToAudit(ctx, event, requestID, attributes)
}

func (l *Logger) logToText(ctx context.Context, event string, attributes []any) {
	if l.textLogger == nil {
		return
	}
	args := append(attributes, "event", event, "log_type", "audit")
	l.textLogger.InfoContext(ctx, event, args...)
}

func (l *Logger) emitToAudit(ctx context.Context, event, requestID string, attributes []any) {
	if l.emitter == nil {
		return
	}

	subjectIDStr := attrs.ExtractString(attributes, "subject_id")
	receiptHash := attrs.ExtractString(attributes, "receipt_hash")

	// Audit rows tolerate a zero subject ID; a malformed attribute must not
	// suppress the event itself.
	subjectID, _ := id.ParseSubjectID(subjectIDStr) //nolint:errcheck

	// Prefer the receipt hash as the event subject, falling back to the
	// subject ID for events that predate a receipt.
	subject := receiptHash
	if subject == "" {
		subject = subjectIDStr
	}

	err := l.emitter.Emit(ctx, Event{
		Category:  AuditEvent(event).Category(),
		SubjectID: subjectID,
		Subject:   subject,
		Action:    event,
		RequestID: requestID,
	})
	if err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", event,
		)
	}
}
