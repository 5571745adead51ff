package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"pactum/internal/ledger/models"
	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/audit"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/testutil"
)

func (s *ServiceSuite) TestVerifyChain_ValidChain() {
	chain := s.newChain(testutil.TestIDs.SubjectID1, 3)
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(chain, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(s.signer.Public, nil)
	event := s.expectAudit()

	report, err := s.service.VerifyChain(context.Background(), testutil.TestIDs.SubjectID1)

	s.Require().NoError(err)
	s.True(report.Valid)
	s.Equal(3, report.Length)
	s.Empty(report.BrokenAt)
	s.Empty(report.Reason)
	s.Equal(string(audit.EventChainVerified), event.Action)
	s.Equal(models.AuditDecisionValid, event.Decision)
}

func (s *ServiceSuite) TestVerifyChain_EmptyChainIsValid() {
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID2).Return(nil, nil)
	s.expectAudit()

	report, err := s.service.VerifyChain(context.Background(), testutil.TestIDs.SubjectID2)

	s.Require().NoError(err)
	s.True(report.Valid)
	s.Zero(report.Length)
}

func (s *ServiceSuite) TestVerifyChain_DetectsTamperedReceipt() {
	chain := s.newChain(testutil.TestIDs.SubjectID1, 2)
	chain[1].Extractive = !chain[1].Extractive
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(chain, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(s.signer.Public, nil)
	event := s.expectAudit()

	report, err := s.service.VerifyChain(context.Background(), testutil.TestIDs.SubjectID1)

	s.Require().NoError(err)
	s.False(report.Valid)
	s.Equal(chain[1].Hash, report.BrokenAt)
	s.Equal(models.BreakHashMismatch, report.Reason)
	s.Equal(models.AuditDecisionBroken, event.Decision)
	s.Equal(models.BreakHashMismatch, event.Reason)
}

func (s *ServiceSuite) TestVerifyChain_DetectsMissingLink() {
	chain := s.newChain(testutil.TestIDs.SubjectID1, 3)
	gapped := []*models.ConsentReceipt{chain[0], chain[2]}
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(gapped, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(s.signer.Public, nil)
	s.expectAudit()

	report, err := s.service.VerifyChain(context.Background(), testutil.TestIDs.SubjectID1)

	s.Require().NoError(err)
	s.False(report.Valid)
	s.Equal(chain[2].Hash, report.BrokenAt)
	s.Equal(models.BreakLinkMismatch, report.Reason)
}

func (s *ServiceSuite) TestVerifyChain_DetectsForeignSignature() {
	stranger := testutil.NewSigner()
	chain := s.newChain(testutil.TestIDs.SubjectID1, 1)
	forged := testutil.NewReceiptBuilder(stranger).
		IssuedAt(testutil.BaseTime.Add(time.Minute)).
		WithPrevHash(chain[0].Hash).
		MustBuild()
	forged.AnchorPosition = 2
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(append(chain, forged), nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(s.signer.Public, nil)
	event := s.expectAudit()

	report, err := s.service.VerifyChain(context.Background(), testutil.TestIDs.SubjectID1)

	s.Require().NoError(err)
	s.False(report.Valid)
	s.Equal(forged.Hash, report.BrokenAt)
	s.Equal(models.BreakSignatureInvalid, report.Reason)
	s.Equal(models.BreakSignatureInvalid, event.Reason)
}

func (s *ServiceSuite) TestVerifyChain_DetectsUnknownGrantor() {
	chain := s.newChain(testutil.TestIDs.SubjectID1, 1)
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(chain, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(nil, sentinel.ErrNotFound)
	s.expectAudit()

	report, err := s.service.VerifyChain(context.Background(), testutil.TestIDs.SubjectID1)

	s.Require().NoError(err)
	s.False(report.Valid)
	s.Equal(models.BreakGrantorUnknown, report.Reason)
}

func (s *ServiceSuite) TestVerifyChain_DetectsMissingAnchor() {
	chain := s.newChain(testutil.TestIDs.SubjectID1, 2)
	chain[1].AnchorPosition = 0
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(chain, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(s.signer.Public, nil)
	s.expectAudit()

	report, err := s.service.VerifyChain(context.Background(), testutil.TestIDs.SubjectID1)

	s.Require().NoError(err)
	s.False(report.Valid)
	s.Equal(chain[1].Hash, report.BrokenAt)
	s.Equal(models.BreakAnchorMissing, report.Reason)
}

func (s *ServiceSuite) TestVerifyChain_GrantorLookupFailureIsAnError() {
	chain := s.newChain(testutil.TestIDs.SubjectID1, 1)
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(chain, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(nil, errors.New("connection reset"))

	_, err := s.service.VerifyChain(context.Background(), testutil.TestIDs.SubjectID1)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal), "infrastructure failures must not read as chain breaks")
}

func (s *ServiceSuite) TestVerifyLedger_AllChainsValid() {
	s.mockStore.EXPECT().ListSubjects(gomock.Any()).Return([]id.SubjectID{testutil.TestIDs.SubjectID1, testutil.TestIDs.SubjectID2}, nil)
	s.mockStore.EXPECT().CountReceipts(gomock.Any()).Return(models.ReceiptCounts{Total: 5, Anchored: 5}, nil)
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(s.newChain(testutil.TestIDs.SubjectID1, 2), nil)
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID2).Return(s.newChain(testutil.TestIDs.SubjectID2, 3), nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(s.signer.Public, nil).AnyTimes()
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	report, err := s.service.VerifyLedger(context.Background())

	s.Require().NoError(err)
	s.True(report.Valid)
	s.Equal(2, report.Subjects)
	s.Equal(5, report.Receipts)
	s.Empty(report.Broken)
}

func (s *ServiceSuite) TestVerifyLedger_ReportsBrokenChains() {
	healthy := s.newChain(testutil.TestIDs.SubjectID1, 2)
	tampered := s.newChain(testutil.TestIDs.SubjectID2, 2)
	tampered[1].Extractive = !tampered[1].Extractive
	s.mockStore.EXPECT().ListSubjects(gomock.Any()).Return([]id.SubjectID{testutil.TestIDs.SubjectID1, testutil.TestIDs.SubjectID2}, nil)
	s.mockStore.EXPECT().CountReceipts(gomock.Any()).Return(models.ReceiptCounts{Total: 4, Anchored: 4}, nil)
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(healthy, nil)
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID2).Return(tampered, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), testutil.TestIDs.GrantorID1).Return(s.signer.Public, nil).AnyTimes()
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	report, err := s.service.VerifyLedger(context.Background())

	s.Require().NoError(err)
	s.False(report.Valid)
	s.Require().Len(report.Broken, 1)
	s.Equal(testutil.TestIDs.SubjectID2, report.Broken[0].SubjectID)
	s.Equal(models.BreakHashMismatch, report.Broken[0].Reason)
}

func (s *ServiceSuite) TestVerifyLedger_EmptyLedger() {
	s.mockStore.EXPECT().ListSubjects(gomock.Any()).Return(nil, nil)
	s.mockStore.EXPECT().CountReceipts(gomock.Any()).Return(models.ReceiptCounts{}, nil)

	report, err := s.service.VerifyLedger(context.Background())

	s.Require().NoError(err)
	s.True(report.Valid)
	s.Zero(report.Subjects)
	s.Zero(report.Receipts)
}
