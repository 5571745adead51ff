package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pactum/contracts/consent"
	"pactum/internal/ledger/models"
	"pactum/internal/ledger/tracer"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/sentinel"
)

// Authorize implements the consent.Checker contract for the ingest gate.
// It resolves the subject's chain head and authorizes only when the current
// consent is active, extractive, and covers every required scope.
func (s *Service) Authorize(ctx context.Context, subjectID id.SubjectID, requiredScopes []string) (_ *consent.Authorization, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanLedgerAuthorize,
		tracer.String(tracer.AttrSubjectID, subjectID.String()),
	)
	defer func() { span.End(err) }()

	head, herr := s.store.Head(ctx, subjectID)
	if herr != nil {
		if errors.Is(herr, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeConsentRequired, "no consent receipt on record for subject")
		}
		return nil, dErrors.Wrap(herr, dErrors.CodeInternal, "load subject chain head")
	}

	status := head.Receipt.Status(head.Revocation, time.Now().UTC())
	span.SetAttributes(
		tracer.String(tracer.AttrReceiptHash, tracer.ShortHash(head.Receipt.Hash.String())),
		tracer.String(tracer.AttrStatus, string(status)),
	)
	if status != models.StatusActive {
		return nil, dErrors.New(dErrors.CodeConsentRequired, fmt.Sprintf("subject consent is %s", status))
	}
	if !head.Receipt.Extractive {
		return nil, dErrors.New(dErrors.CodeConsentRequired, "subject consent does not permit extractive use")
	}
	if !head.Receipt.CoversScopes(requiredScopes) {
		return nil, dErrors.New(dErrors.CodeScopeNotCovered, "required scopes exceed the consented scope set")
	}

	return &consent.Authorization{
		ReceiptHash: head.Receipt.Hash,
		Scope:       head.Receipt.Scope,
	}, nil
}

// Verify interface is satisfied.
var _ consent.Checker = (*Service)(nil)
