package service

import (
	"context"
	"crypto/ed25519"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"pactum/internal/ledger/models"
	"pactum/internal/ledger/tracer"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/requestcontext"
)

// maxConcurrentChainWalks bounds the errgroup fan-out of a ledger-wide sweep.
const maxConcurrentChainWalks = 8

// VerifyChain walks one subject's chain from genesis to head, recomputing
// every hash and prev link and verifying every signature against the
// grantor's registered key. Semantic breaks land in the report with the
// first failing receipt; infrastructure failures return an error instead.
func (s *Service) VerifyChain(ctx context.Context, subjectID id.SubjectID) (_ *models.ChainReport, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanChainVerify,
		tracer.String(tracer.AttrSubjectID, subjectID.String()),
	)
	defer func() { span.End(err) }()

	receipts, lerr := s.store.ListBySubject(ctx, subjectID)
	if lerr != nil {
		return nil, dErrors.Wrap(lerr, dErrors.CodeInternal, "list subject receipts")
	}

	report, werr := s.walkChain(ctx, subjectID, receipts)
	if werr != nil {
		return nil, werr
	}

	span.SetAttributes(tracer.Int64(tracer.AttrChainLength, int64(report.Length)))
	if !report.Valid {
		if s.metrics != nil {
			s.metrics.IncrementChainVerifyFailed()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "chain verification found a break",
				"subject_id", subjectID,
				"broken_at", report.BrokenAt,
				"reason", report.Reason,
			)
		}
	}
	s.auditChainVerified(ctx, report)
	return report, nil
}

// VerifyLedger sweeps every subject chain concurrently and aggregates the
// failures. Valid is true only when every chain verifies.
func (s *Service) VerifyLedger(ctx context.Context) (_ *models.LedgerReport, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLedgerVerify)
	defer func() { span.End(err) }()

	subjects, serr := s.store.ListSubjects(ctx)
	if serr != nil {
		return nil, dErrors.Wrap(serr, dErrors.CodeInternal, "list subjects")
	}
	counts, cerr := s.store.CountReceipts(ctx)
	if cerr != nil {
		return nil, dErrors.Wrap(cerr, dErrors.CodeInternal, "count receipts")
	}

	reports := make([]*models.ChainReport, len(subjects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChainWalks)
	for i, subjectID := range subjects {
		g.Go(func() error {
			report, verr := s.VerifyChain(gctx, subjectID)
			if verr != nil {
				return verr
			}
			reports[i] = report
			return nil
		})
	}
	if gerr := g.Wait(); gerr != nil {
		return nil, gerr
	}

	ledger := &models.LedgerReport{
		Subjects: len(subjects),
		Receipts: int(counts.Total),
		Valid:    true,
	}
	for _, report := range reports {
		if !report.Valid {
			ledger.Valid = false
			ledger.Broken = append(ledger.Broken, report)
		}
	}
	return ledger, nil
}

// walkChain checks the chain invariants link by link and reports the first
// break. Grantor keys are memoized for the walk; receipts in a chain usually
// share one grantor.
func (s *Service) walkChain(ctx context.Context, subjectID id.SubjectID, receipts []*models.ConsentReceipt) (*models.ChainReport, error) {
	report := &models.ChainReport{SubjectID: subjectID, Length: len(receipts), Valid: true}
	keys := make(map[id.GrantorID]ed25519.PublicKey)
	var prev id.ReceiptHash
	for _, receipt := range receipts {
		reason, cerr := s.checkLink(ctx, receipt, prev, keys)
		if cerr != nil {
			return nil, cerr
		}
		if reason != "" {
			report.Valid = false
			report.BrokenAt = receipt.Hash
			report.Reason = reason
			return report, nil
		}
		prev = receipt.Hash
	}
	return report, nil
}

// checkLink validates a single chain link and returns the break reason, or
// "" when the link holds.
func (s *Service) checkLink(ctx context.Context, receipt *models.ConsentReceipt, prev id.ReceiptHash, keys map[id.GrantorID]ed25519.PublicKey) (string, error) {
	computed, err := receipt.ComputeHash()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "recompute receipt hash")
	}
	if computed != receipt.Hash {
		return models.BreakHashMismatch, nil
	}
	if receipt.PrevHash != prev {
		return models.BreakLinkMismatch, nil
	}

	key, ok := keys[receipt.GrantorID]
	if !ok {
		resolved, kerr := s.directory.GrantorKey(ctx, receipt.GrantorID)
		if kerr != nil {
			if errors.Is(kerr, sentinel.ErrNotFound) {
				return models.BreakGrantorUnknown, nil
			}
			return "", dErrors.Wrap(kerr, dErrors.CodeInternal, "resolve grantor key")
		}
		key = resolved
		keys[receipt.GrantorID] = key
	}
	if receipt.VerifySignature(key) != nil {
		return models.BreakSignatureInvalid, nil
	}
	if receipt.AnchorPosition <= 0 {
		return models.BreakAnchorMissing, nil
	}
	return "", nil
}

// auditChainVerified records the verification outcome. For a broken chain,
// Subject carries the first failing receipt hash.
func (s *Service) auditChainVerified(ctx context.Context, report *models.ChainReport) {
	decision := models.AuditDecisionValid
	if !report.Valid {
		decision = models.AuditDecisionBroken
	}
	s.emitAudit(ctx, audit.Event{
		Category:  audit.EventChainVerified.Category(),
		Timestamp: time.Now().UTC(),
		SubjectID: report.SubjectID,
		Subject:   report.BrokenAt.String(),
		Action:    string(audit.EventChainVerified),
		Decision:  decision,
		Reason:    report.Reason,
		RequestID: requestcontext.RequestID(ctx),
	})
}
