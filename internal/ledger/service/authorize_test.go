package service

import (
	"context"
	"time"

	"go.uber.org/mock/gomock"

	"pactum/internal/ledger/models"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/testutil"
)

// extractiveHead builds a chain head with active extractive consent.
func (s *ServiceSuite) extractiveHead(scope ...string) *models.HeadState {
	receipt := testutil.NewReceiptBuilder(s.signer).
		Extractive(true).
		WithScope(scope...).
		MustBuild()
	return &models.HeadState{Receipt: receipt}
}

func (s *ServiceSuite) TestAuthorize_Success() {
	head := s.extractiveHead("analytics", "model_training")
	s.mockStore.EXPECT().Head(gomock.Any(), testutil.TestIDs.SubjectID1).Return(head, nil)

	authz, err := s.service.Authorize(context.Background(), testutil.TestIDs.SubjectID1, []string{"analytics"})

	s.Require().NoError(err)
	s.Equal(head.Receipt.Hash, authz.ReceiptHash)
	s.Equal([]string{"analytics", "model_training"}, authz.Scope)
}

func (s *ServiceSuite) TestAuthorize_EmptyScopesNeedOnlyExtractiveConsent() {
	head := s.extractiveHead("analytics")
	s.mockStore.EXPECT().Head(gomock.Any(), testutil.TestIDs.SubjectID1).Return(head, nil)

	authz, err := s.service.Authorize(context.Background(), testutil.TestIDs.SubjectID1, nil)

	s.Require().NoError(err)
	s.Equal(head.Receipt.Hash, authz.ReceiptHash)
}

func (s *ServiceSuite) TestAuthorize_NoReceiptsOnRecord() {
	s.mockStore.EXPECT().Head(gomock.Any(), testutil.TestIDs.SubjectID2).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Authorize(context.Background(), testutil.TestIDs.SubjectID2, []string{"analytics"})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConsentRequired), "expected CodeConsentRequired for subject with no receipts")
}

func (s *ServiceSuite) TestAuthorize_RevokedConsent() {
	head := s.extractiveHead("analytics")
	head.Revocation = testutil.NewTestRevocation(s.signer, head.Receipt.Hash, time.Now().UTC().Truncate(time.Second).Add(-time.Hour))
	s.mockStore.EXPECT().Head(gomock.Any(), testutil.TestIDs.SubjectID1).Return(head, nil)

	_, err := s.service.Authorize(context.Background(), testutil.TestIDs.SubjectID1, []string{"analytics"})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConsentRequired), "expected CodeConsentRequired for revoked consent")
}

func (s *ServiceSuite) TestAuthorize_ExpiredConsent() {
	issued := time.Now().UTC().Truncate(time.Second).Add(-2 * time.Hour)
	receipt := testutil.NewReceiptBuilder(s.signer).
		Extractive(true).
		IssuedAt(issued).
		ExpiresAt(issued.Add(time.Hour)).
		MustBuild()
	s.mockStore.EXPECT().Head(gomock.Any(), testutil.TestIDs.SubjectID1).Return(&models.HeadState{Receipt: receipt}, nil)

	_, err := s.service.Authorize(context.Background(), testutil.TestIDs.SubjectID1, []string{"analytics"})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConsentRequired), "expected CodeConsentRequired for expired consent")
}

func (s *ServiceSuite) TestAuthorize_NonExtractiveConsent() {
	receipt := testutil.NewReceiptBuilder(s.signer).WithScope("analytics").MustBuild()
	s.mockStore.EXPECT().Head(gomock.Any(), testutil.TestIDs.SubjectID1).Return(&models.HeadState{Receipt: receipt}, nil)

	_, err := s.service.Authorize(context.Background(), testutil.TestIDs.SubjectID1, []string{"analytics"})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConsentRequired), "active non-extractive consent must not authorize extraction")
}

func (s *ServiceSuite) TestAuthorize_ScopeNotCovered() {
	head := s.extractiveHead("analytics")
	s.mockStore.EXPECT().Head(gomock.Any(), testutil.TestIDs.SubjectID1).Return(head, nil)

	_, err := s.service.Authorize(context.Background(), testutil.TestIDs.SubjectID1, []string{"analytics", "model_training"})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeScopeNotCovered), "expected CodeScopeNotCovered for scope outside the consented set")
}

func (s *ServiceSuite) TestAuthorize_HeadReflectsLatestReceipt() {
	// A non-extractive genesis superseded by an extractive receipt: only
	// the chain head matters for authorization.
	genesis := s.newGenesisReceipt()
	head := testutil.NewReceiptBuilder(s.signer).
		Extractive(true).
		WithScope("analytics").
		IssuedAt(testutil.BaseTime.Add(time.Minute)).
		WithPrevHash(genesis.Hash).
		MustBuild()
	s.mockStore.EXPECT().Head(gomock.Any(), testutil.TestIDs.SubjectID1).Return(&models.HeadState{Receipt: head}, nil)

	authz, err := s.service.Authorize(context.Background(), testutil.TestIDs.SubjectID1, []string{"analytics"})

	s.Require().NoError(err)
	s.Equal(head.Hash, authz.ReceiptHash)
}
