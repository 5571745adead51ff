package service

import (
	"context"
	"errors"
	"time"

	"pactum/internal/ledger/models"
	"pactum/internal/ledger/tracer"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/sentinel"
)

// Status derives the consent status of a receipt at the given instant.
// A nil at means "now" and makes the query cacheable; explicit instants
// always recompute against the store.
func (s *Service) Status(ctx context.Context, hash id.ReceiptHash, at *time.Time) (_ *models.StatusResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLedgerStatus,
		tracer.String(tracer.AttrReceiptHash, tracer.ShortHash(hash.String())),
	)
	defer func() { span.End(err) }()

	defaultTime := at == nil
	effective := time.Now().UTC()
	if !defaultTime {
		effective = at.UTC()
	}

	if defaultTime {
		if result, ok := s.cachedStatus(ctx, hash, effective); ok {
			span.SetAttributes(
				tracer.Bool(tracer.AttrCacheHit, true),
				tracer.String(tracer.AttrStatus, string(result.Status)),
			)
			s.recordStatusQuery(result.Status)
			return result, nil
		}
	}

	receipt, ferr := s.store.FindByHash(ctx, hash)
	if ferr != nil {
		if errors.Is(ferr, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(ferr, dErrors.CodeUnknownReceipt, "receipt not found")
		}
		return nil, dErrors.Wrap(ferr, dErrors.CodeInternal, "find receipt")
	}
	revocation, rerr := s.findRevocation(ctx, hash)
	if rerr != nil {
		return nil, rerr
	}

	status := receipt.Status(revocation, effective)
	if defaultTime {
		s.maybeCacheStatus(ctx, receipt, revocation, status, effective)
	}

	result := &models.StatusResult{ReceiptHash: hash, Status: status, At: effective}
	if status == models.StatusRevoked {
		result.RevokedAt = &revocation.RevokedAt
	}
	span.SetAttributes(tracer.String(tracer.AttrStatus, string(status)))
	s.recordStatusQuery(status)
	return result, nil
}

// GetReceipt loads a receipt by hash.
func (s *Service) GetReceipt(ctx context.Context, hash id.ReceiptHash) (*models.ConsentReceipt, error) {
	receipt, err := s.store.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "receipt not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find receipt")
	}
	return receipt, nil
}

// ListSubjectReceipts returns the subject's chain, genesis first. A subject
// with no receipts yields an empty chain, not an error.
func (s *Service) ListSubjectReceipts(ctx context.Context, subjectID id.SubjectID) ([]*models.ConsentReceipt, error) {
	receipts, err := s.store.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list subject receipts")
	}
	return receipts, nil
}

// findRevocation loads the revocation for a receipt; absence is not an error.
func (s *Service) findRevocation(ctx context.Context, hash id.ReceiptHash) (*models.RevocationRecord, error) {
	revocation, err := s.store.FindRevocation(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find revocation")
	}
	return revocation, nil
}

// cachedStatus serves a default-time status query from the cache. Revoked
// entries still need the revocation record for its timestamp; if that lookup
// fails the query falls back to full derivation. Cache failures degrade to a
// miss and are logged.
func (s *Service) cachedStatus(ctx context.Context, hash id.ReceiptHash, at time.Time) (*models.StatusResult, bool) {
	if s.statusCache == nil {
		return nil, false
	}
	status, err := s.statusCache.FindStatus(ctx, hash)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "status cache read failed",
				"receipt_hash", hash,
				"error", err,
			)
		}
		return nil, false
	}

	result := &models.StatusResult{ReceiptHash: hash, Status: status, At: at}
	if status == models.StatusRevoked {
		revocation, rerr := s.store.FindRevocation(ctx, hash)
		if rerr != nil {
			return nil, false
		}
		result.RevokedAt = &revocation.RevokedAt
	}
	return result, true
}

// maybeCacheStatus writes a derived status to the cache. Revoked status is
// terminal and always safe. Everything else only enters the cache when nothing
// can flip it before the entry expires:
//   - a revocation record that is not yet effective flips the status at
//     RevokedAt with no invalidation to follow, so the fill is skipped;
//   - an active receipt expiring within one cache lifetime could keep
//     reporting active past its expiry, so it is skipped too;
//   - a revocation committed between the derivation read and this write has
//     already run its cache invalidation, which a stale active fill would
//     overwrite. The record is re-read just before the write; the unguarded
//     window shrinks to the gap between that read and the write, and any
//     entry written inside it still expires after one TTL.
func (s *Service) maybeCacheStatus(ctx context.Context, receipt *models.ConsentReceipt, revocation *models.RevocationRecord, status models.Status, at time.Time) {
	if s.statusCache == nil {
		return
	}
	if status != models.StatusRevoked && revocation != nil {
		return
	}
	if status == models.StatusActive {
		if receipt.ExpiresAt != nil && receipt.ExpiresAt.Before(at.Add(s.statusCache.TTL())) {
			return
		}
		if recheck, err := s.findRevocation(ctx, receipt.Hash); err != nil || recheck != nil {
			return
		}
	}
	if err := s.statusCache.SaveStatus(ctx, receipt.Hash, status); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "status cache write failed",
			"receipt_hash", receipt.Hash,
			"error", err,
		)
	}
}

func (s *Service) recordStatusQuery(status models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementStatusQueries(string(status))
	}
}
