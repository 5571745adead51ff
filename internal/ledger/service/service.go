package service

import (
	"context"
	"crypto/ed25519"
	"errors"
	"log/slog"
	"time"

	"pactum/internal/ledger/models"
	"pactum/internal/ledger/tracer"
	"pactum/internal/platform/metrics"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/requestcontext"
)

// Store defines the persistence interface for the receipt ledger.
// Error Contract:
// - AppendReceipt returns sentinel.ErrDuplicateReceipt when the content hash
//   already exists and sentinel.ErrInvalidChain when prev_hash does not match
//   the subject's current chain head
// - AppendRevocation returns sentinel.ErrUnknownReceipt and sentinel.ErrAlreadyRevoked
// - Find and Head methods return sentinel.ErrNotFound when the entity is absent
// - List and Count methods return empty results, never sentinel.ErrNotFound
type Store interface {
	AppendReceipt(ctx context.Context, receipt *models.ConsentReceipt) error
	AppendRevocation(ctx context.Context, record *models.RevocationRecord) error
	FindByHash(ctx context.Context, hash id.ReceiptHash) (*models.ConsentReceipt, error)
	FindRevocation(ctx context.Context, hash id.ReceiptHash) (*models.RevocationRecord, error)
	Head(ctx context.Context, subjectID id.SubjectID) (*models.HeadState, error)
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.ConsentReceipt, error)
	ListSubjects(ctx context.Context) ([]id.SubjectID, error)
	ListHeads(ctx context.Context) ([]*models.HeadState, error)
	CountReceipts(ctx context.Context) (models.ReceiptCounts, error)
}

// Directory resolves registered parties for signature verification and
// referential checks. Implemented by the party service.
// Error Contract: both methods return sentinel.ErrNotFound for unregistered
// parties.
type Directory interface {
	GrantorKey(ctx context.Context, grantorID id.GrantorID) (ed25519.PublicKey, error)
	SubjectExists(ctx context.Context, subjectID id.SubjectID) error
}

// StatusCache caches derived statuses keyed by receipt hash. The service owns
// the policy of what is safe to cache; implementations only move values.
// Error Contract: FindStatus returns sentinel.ErrNotFound on a miss.
type StatusCache interface {
	FindStatus(ctx context.Context, hash id.ReceiptHash) (models.Status, error)
	SaveStatus(ctx context.Context, hash id.ReceiptHash, status models.Status) error
	Invalidate(ctx context.Context, hash id.ReceiptHash) error
	TTL() time.Duration
}

// AuditPublisher emits audit events for ledger mutations and rejections.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Rejection reasons recorded on audit events and metrics.
const (
	reasonGrantorMismatch  = "grantor_mismatch"
	reasonGrantorUnknown   = "grantor_unknown"
	reasonSubjectUnknown   = "subject_unknown"
	reasonInvalidSignature = "invalid_signature"
	reasonDuplicateReceipt = "duplicate_receipt"
	reasonChainMismatch    = "chain_mismatch"
	reasonUnknownReceipt   = "unknown_receipt"
	reasonAlreadyRevoked   = "already_revoked"
)

// Service owns the receipt ledger lifecycle: appends, revocations, status
// derivation, and chain verification. Mutations serialize per subject chain
// through a sharded lock so each chain keeps one writer; reads never take
// it.
type Service struct {
	chains      *chainLock
	store       Store
	directory   Directory
	statusCache StatusCache
	auditor     AuditPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      tracer.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithAuditor sets the audit publisher for ledger mutations and rejections.
func WithAuditor(auditor AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer sets the tracer for the service. Defaults to a no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithStatusCache enables caching of default-time status queries.
func WithStatusCache(cache StatusCache) Option {
	return func(s *Service) {
		s.statusCache = cache
	}
}

// New creates the ledger service.
// Panics if store or directory is nil - fail fast at startup.
func New(store Store, directory Directory, opts ...Option) *Service {
	if store == nil {
		panic("service.New: ledger store is required")
	}
	if directory == nil {
		panic("service.New: party directory is required")
	}
	s := &Service{
		chains:    newChainLock(),
		store:     store,
		directory: directory,
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append verifies and appends a grantor-signed receipt to the ledger.
//
// Verification order: actor binding, grantor key resolution, signature,
// subject registration, then the chained append. The append itself extends
// the subject chain and assigns the next global anchor position atomically;
// the store reports duplicates before chain-head mismatches.
func (s *Service) Append(ctx context.Context, receipt *models.ConsentReceipt, actorID id.GrantorID) (_ *models.ConsentReceipt, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanLedgerAppend,
		tracer.String(tracer.AttrSubjectID, receipt.SubjectID.String()),
		tracer.String(tracer.AttrReceiptHash, tracer.ShortHash(receipt.Hash.String())),
		tracer.Bool(tracer.AttrExtractive, receipt.Extractive),
	)
	defer func() { span.End(err) }()

	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing grantor identity")
	}
	if actorID != receipt.GrantorID {
		s.auditAppendRejected(ctx, receipt, actorID, reasonGrantorMismatch)
		return nil, dErrors.New(dErrors.CodeForbidden, "receipt grantor does not match authenticated grantor")
	}

	key, kerr := s.directory.GrantorKey(ctx, receipt.GrantorID)
	if kerr != nil {
		if errors.Is(kerr, sentinel.ErrNotFound) {
			s.auditAppendRejected(ctx, receipt, actorID, reasonGrantorUnknown)
			return nil, dErrors.New(dErrors.CodeNotFound, "grantor is not registered")
		}
		return nil, dErrors.Wrap(kerr, dErrors.CodeInternal, "resolve grantor key")
	}
	if verr := receipt.VerifySignature(key); verr != nil {
		s.auditAppendRejected(ctx, receipt, actorID, reasonInvalidSignature)
		return nil, verr
	}
	if serr := s.directory.SubjectExists(ctx, receipt.SubjectID); serr != nil {
		if errors.Is(serr, sentinel.ErrNotFound) {
			s.auditAppendRejected(ctx, receipt, actorID, reasonSubjectUnknown)
			return nil, dErrors.New(dErrors.CodeNotFound, "subject is not registered")
		}
		return nil, dErrors.Wrap(serr, dErrors.CodeInternal, "check subject registration")
	}

	aerr := s.chains.run(ctx, receipt.SubjectID.String(), func() error {
		return s.store.AppendReceipt(ctx, receipt)
	})
	if aerr != nil {
		switch {
		case errors.Is(aerr, sentinel.ErrDuplicateReceipt):
			s.auditAppendRejected(ctx, receipt, actorID, reasonDuplicateReceipt)
			return nil, dErrors.Wrap(aerr, dErrors.CodeDuplicateReceipt, "identical receipt already appended")
		case errors.Is(aerr, sentinel.ErrInvalidChain):
			s.auditAppendRejected(ctx, receipt, actorID, reasonChainMismatch)
			return nil, dErrors.Wrap(aerr, dErrors.CodeInvalidChain, "prev hash does not extend the subject chain")
		case dErrors.HasCode(aerr, dErrors.CodeTimeout):
			return nil, aerr
		default:
			return nil, dErrors.Wrap(aerr, dErrors.CodeInternal, "append receipt")
		}
	}

	span.SetAttributes(tracer.Int64(tracer.AttrAnchorPosition, receipt.AnchorPosition))
	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventReceiptAppended.Category(),
		Timestamp: time.Now().UTC(),
		SubjectID: receipt.SubjectID,
		Subject:   receipt.Hash.String(),
		Action:    string(audit.EventReceiptAppended),
		Decision:  models.AuditDecisionAppended,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	span.AddEvent(tracer.EventAuditEmitted)

	if s.metrics != nil {
		s.metrics.IncrementReceiptsAppended(receipt.Extractive)
		s.metrics.SetAnchorPosition(receipt.AnchorPosition)
		s.metrics.ObserveAppendLatency(time.Since(start).Seconds())
	}
	s.logLedgerEvent(ctx, "receipt_appended", receipt.Hash,
		"subject_id", receipt.SubjectID,
		"grantor_id", receipt.GrantorID,
		"anchor_position", receipt.AnchorPosition,
		"extractive", receipt.Extractive,
	)
	return receipt, nil
}

// Revoke appends the terminal revocation record for a receipt. The signature
// must verify against the original receipt grantor's registered key, not the
// caller's; RevokedAt is assigned server-side at whole-second precision.
func (s *Service) Revoke(ctx context.Context, hash id.ReceiptHash, signature []byte, actorID id.GrantorID) (_ *models.RevocationRecord, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLedgerRevoke,
		tracer.String(tracer.AttrReceiptHash, tracer.ShortHash(hash.String())),
	)
	defer func() { span.End(err) }()

	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing grantor identity")
	}

	receipt, ferr := s.store.FindByHash(ctx, hash)
	if ferr != nil {
		if errors.Is(ferr, sentinel.ErrNotFound) {
			s.auditRevocationRejected(ctx, hash, actorID, reasonUnknownReceipt)
			return nil, dErrors.Wrap(ferr, dErrors.CodeUnknownReceipt, "receipt not found")
		}
		return nil, dErrors.Wrap(ferr, dErrors.CodeInternal, "find receipt")
	}

	key, kerr := s.directory.GrantorKey(ctx, receipt.GrantorID)
	if kerr != nil {
		// Grantors are never deregistered; a missing key under an appended
		// receipt is an internal inconsistency, not a caller error.
		return nil, dErrors.Wrap(kerr, dErrors.CodeInternal, "resolve grantor key")
	}
	if verr := models.VerifyRevocationSignature(hash, signature, key); verr != nil {
		s.auditRevocationRejected(ctx, hash, actorID, reasonInvalidSignature)
		return nil, verr
	}

	record, rerr := models.NewRevocation(hash, time.Now().UTC().Truncate(time.Second), signature)
	if rerr != nil {
		return nil, rerr
	}

	aerr := s.chains.run(ctx, receipt.SubjectID.String(), func() error {
		return s.store.AppendRevocation(ctx, record)
	})
	if aerr != nil {
		switch {
		case errors.Is(aerr, sentinel.ErrUnknownReceipt):
			s.auditRevocationRejected(ctx, hash, actorID, reasonUnknownReceipt)
			return nil, dErrors.Wrap(aerr, dErrors.CodeUnknownReceipt, "receipt not found")
		case errors.Is(aerr, sentinel.ErrAlreadyRevoked):
			s.auditRevocationRejected(ctx, hash, actorID, reasonAlreadyRevoked)
			return nil, dErrors.Wrap(aerr, dErrors.CodeAlreadyRevoked, "receipt already revoked")
		case dErrors.HasCode(aerr, dErrors.CodeTimeout):
			return nil, aerr
		default:
			return nil, dErrors.Wrap(aerr, dErrors.CodeInternal, "append revocation")
		}
	}

	s.invalidateStatus(ctx, hash)
	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventReceiptRevoked.Category(),
		Timestamp: record.RevokedAt,
		SubjectID: receipt.SubjectID,
		Subject:   hash.String(),
		Action:    string(audit.EventReceiptRevoked),
		Decision:  models.AuditDecisionRevoked,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	span.AddEvent(tracer.EventAuditEmitted)

	if s.metrics != nil {
		s.metrics.IncrementReceiptsRevoked()
	}
	s.logLedgerEvent(ctx, "receipt_revoked", hash,
		"subject_id", receipt.SubjectID,
		"revoked_at", record.RevokedAt,
	)
	return record, nil
}

// emitAudit publishes an audit event. Emission is best-effort: failures are
// logged and never change the outcome of the ledger operation.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit ledger audit event",
			"error", err,
			"action", event.Action,
		)
	}
}

// auditAppendRejected records a rejected append on the audit trail and the
// rejection metric.
func (s *Service) auditAppendRejected(ctx context.Context, receipt *models.ConsentReceipt, actorID id.GrantorID, reason string) {
	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventAppendRejected.Category(),
		Timestamp: time.Now().UTC(),
		SubjectID: receipt.SubjectID,
		Subject:   receipt.Hash.String(),
		Action:    string(audit.EventAppendRejected),
		Decision:  models.AuditDecisionRejected,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementAppendRejected(reason)
	}
}

// auditRevocationRejected records a rejected revocation on the audit trail
// and the rejection metric.
func (s *Service) auditRevocationRejected(ctx context.Context, hash id.ReceiptHash, actorID id.GrantorID, reason string) {
	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventRevocationRejected.Category(),
		Timestamp: time.Now().UTC(),
		Subject:   hash.String(),
		Action:    string(audit.EventRevocationRejected),
		Decision:  models.AuditDecisionRejected,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actorID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementRevocationRejected(reason)
	}
}

// invalidateStatus drops the cached status for a receipt so a stale active
// entry never outlives its revocation record.
func (s *Service) invalidateStatus(ctx context.Context, hash id.ReceiptHash) {
	if s.statusCache == nil {
		return
	}
	if err := s.statusCache.Invalidate(ctx, hash); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to invalidate status cache",
			"receipt_hash", hash,
			"error", err,
		)
	}
}

func (s *Service) logLedgerEvent(ctx context.Context, msg string, hash id.ReceiptHash, attributes ...any) {
	if s.logger == nil {
		return
	}
	args := append([]any{"receipt_hash", hash}, attributes...)
	s.logger.InfoContext(ctx, msg, args...)
}
