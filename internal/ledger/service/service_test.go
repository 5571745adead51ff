package service

import (
	"context"
	"crypto/ed25519"
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

func (s *ServiceSuite) TestAppend_Success() {
	receipt := s.newGenesisReceipt()
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockDirectory.EXPECT().SubjectExists(gomock.Any(), receipt.SubjectID).Return(nil)
	s.mockStore.EXPECT().AppendReceipt(gomock.Any(), receipt).DoAndReturn(func(_ context.Context, r *models.ConsentReceipt) error {
		r.AnchorPosition = 1
		return nil
	})
	event := s.expectAudit()

	appended, err := s.service.Append(context.Background(), receipt, receipt.GrantorID)

	s.Require().NoError(err)
	s.Equal(receipt.Hash, appended.Hash)
	s.Equal(int64(1), appended.AnchorPosition)
	s.Equal(string(audit.EventReceiptAppended), event.Action)
	s.Equal(audit.CategoryCompliance, event.Category)
	s.Equal(receipt.SubjectID, event.SubjectID)
	s.Equal(receipt.Hash.String(), event.Subject)
	s.Equal(models.AuditDecisionAppended, event.Decision)
	s.Equal(receipt.GrantorID.String(), event.ActorID)
}

func (s *ServiceSuite) TestAppend_MissingActor() {
	receipt := s.newGenesisReceipt()

	_, err := s.service.Append(context.Background(), receipt, id.GrantorID{})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "expected CodeUnauthorized for missing actor")
}

func (s *ServiceSuite) TestAppend_GrantorMismatch() {
	receipt := s.newGenesisReceipt()
	event := s.expectAudit()

	_, err := s.service.Append(context.Background(), receipt, testutil.TestIDs.GrantorID2)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "expected CodeForbidden for grantor mismatch")
	s.Equal(string(audit.EventAppendRejected), event.Action)
	s.Equal(audit.CategorySecurity, event.Category)
	s.Equal("grantor_mismatch", event.Reason)
	s.Equal(testutil.TestIDs.GrantorID2.String(), event.ActorID)
}

func (s *ServiceSuite) TestAppend_UnknownGrantor() {
	receipt := s.newGenesisReceipt()
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(nil, sentinel.ErrNotFound)
	event := s.expectAudit()

	_, err := s.service.Append(context.Background(), receipt, receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "expected CodeNotFound for unregistered grantor")
	s.Equal("grantor_unknown", event.Reason)
}

func (s *ServiceSuite) TestAppend_InvalidSignature() {
	receipt := s.newGenesisReceipt()
	stranger := testutil.NewSigner()
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(stranger.Public, nil)
	event := s.expectAudit()

	_, err := s.service.Append(context.Background(), receipt, receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidSignature), "expected CodeInvalidSignature for wrong key")
	s.Equal(string(audit.EventAppendRejected), event.Action)
	s.Equal("invalid_signature", event.Reason)
}

func (s *ServiceSuite) TestAppend_UnknownSubject() {
	receipt := s.newGenesisReceipt()
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockDirectory.EXPECT().SubjectExists(gomock.Any(), receipt.SubjectID).Return(sentinel.ErrNotFound)
	event := s.expectAudit()

	_, err := s.service.Append(context.Background(), receipt, receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "expected CodeNotFound for unregistered subject")
	s.Equal("subject_unknown", event.Reason)
}

func (s *ServiceSuite) TestAppend_Duplicate() {
	receipt := s.newGenesisReceipt()
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockDirectory.EXPECT().SubjectExists(gomock.Any(), receipt.SubjectID).Return(nil)
	s.mockStore.EXPECT().AppendReceipt(gomock.Any(), receipt).Return(sentinel.ErrDuplicateReceipt)
	event := s.expectAudit()

	_, err := s.service.Append(context.Background(), receipt, receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateReceipt), "expected CodeDuplicateReceipt")
	s.True(errors.Is(err, sentinel.ErrDuplicateReceipt), "wrapped sentinel must survive")
	s.Equal("duplicate_receipt", event.Reason)
}

func (s *ServiceSuite) TestAppend_ChainMismatch() {
	receipt := s.newGenesisReceipt()
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockDirectory.EXPECT().SubjectExists(gomock.Any(), receipt.SubjectID).Return(nil)
	s.mockStore.EXPECT().AppendReceipt(gomock.Any(), receipt).Return(sentinel.ErrInvalidChain)
	event := s.expectAudit()

	_, err := s.service.Append(context.Background(), receipt, receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidChain), "expected CodeInvalidChain")
	s.Equal("chain_mismatch", event.Reason)
}

func (s *ServiceSuite) TestAppend_StoreFailure() {
	receipt := s.newGenesisReceipt()
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockDirectory.EXPECT().SubjectExists(gomock.Any(), receipt.SubjectID).Return(nil)
	s.mockStore.EXPECT().AppendReceipt(gomock.Any(), receipt).Return(errors.New("connection reset"))

	_, err := s.service.Append(context.Background(), receipt, receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal), "expected CodeInternal for store failure")
}

func (s *ServiceSuite) TestRevoke_Success() {
	receipt := s.newGenesisReceipt()
	signature := s.signer.SignRevocation(receipt.Hash)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockStore.EXPECT().AppendRevocation(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, record *models.RevocationRecord) error {
		s.Equal(receipt.Hash, record.ReceiptHash)
		return nil
	})
	event := s.expectAudit()

	record, err := s.service.Revoke(context.Background(), receipt.Hash, signature, receipt.GrantorID)

	s.Require().NoError(err)
	s.Equal(receipt.Hash, record.ReceiptHash)
	s.True(record.RevokedAt.Equal(record.RevokedAt.Truncate(time.Second)), "revocation time must be whole-second")
	s.Equal(time.UTC, record.RevokedAt.Location())
	s.Equal(string(audit.EventReceiptRevoked), event.Action)
	s.Equal(audit.CategoryCompliance, event.Category)
	s.Equal(receipt.SubjectID, event.SubjectID)
	s.Equal(models.AuditDecisionRevoked, event.Decision)
}

func (s *ServiceSuite) TestRevoke_MissingActor() {
	receipt := s.newGenesisReceipt()

	_, err := s.service.Revoke(context.Background(), receipt.Hash, s.signer.SignRevocation(receipt.Hash), id.GrantorID{})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "expected CodeUnauthorized for missing actor")
}

func (s *ServiceSuite) TestRevoke_UnknownReceipt() {
	hash := testutil.NewTestReceipt(s.signer, testutil.TestIDs.SubjectID2).Hash
	s.mockStore.EXPECT().FindByHash(gomock.Any(), hash).Return(nil, sentinel.ErrNotFound)
	event := s.expectAudit()

	_, err := s.service.Revoke(context.Background(), hash, s.signer.SignRevocation(hash), testutil.TestIDs.GrantorID1)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnknownReceipt), "expected CodeUnknownReceipt")
	s.Equal(string(audit.EventRevocationRejected), event.Action)
	s.Equal("unknown_receipt", event.Reason)
}

func (s *ServiceSuite) TestRevoke_InvalidSignature() {
	receipt := s.newGenesisReceipt()
	badSignature := make([]byte, ed25519.SignatureSize)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	event := s.expectAudit()

	_, err := s.service.Revoke(context.Background(), receipt.Hash, badSignature, receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidSignature), "expected CodeInvalidSignature")
	s.Equal("invalid_signature", event.Reason)
}

func (s *ServiceSuite) TestRevoke_RejectsOtherGrantorsSignature() {
	receipt := s.newGenesisReceipt()
	stranger := testutil.NewSigner()
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.expectAudit()

	_, err := s.service.Revoke(context.Background(), receipt.Hash, stranger.SignRevocation(receipt.Hash), receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidSignature), "revocation must be signed by the original grantor")
}

func (s *ServiceSuite) TestRevoke_AlreadyRevoked() {
	receipt := s.newGenesisReceipt()
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockStore.EXPECT().AppendRevocation(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyRevoked)
	event := s.expectAudit()

	_, err := s.service.Revoke(context.Background(), receipt.Hash, s.signer.SignRevocation(receipt.Hash), receipt.GrantorID)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked), "expected CodeAlreadyRevoked")
	s.Equal("already_revoked", event.Reason)
}

func (s *ServiceSuite) TestRevoke_InvalidatesStatusCache() {
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockStore.EXPECT().AppendRevocation(gomock.Any(), gomock.Any()).Return(nil)
	s.mockCache.EXPECT().Invalidate(gomock.Any(), receipt.Hash).Return(nil)
	s.expectAudit()

	_, err := s.service.Revoke(context.Background(), receipt.Hash, s.signer.SignRevocation(receipt.Hash), receipt.GrantorID)

	s.Require().NoError(err)
}

func (s *ServiceSuite) TestAppend_AuditFailureDoesNotBlock() {
	receipt := s.newGenesisReceipt()
	s.mockDirectory.EXPECT().GrantorKey(gomock.Any(), receipt.GrantorID).Return(s.signer.Public, nil)
	s.mockDirectory.EXPECT().SubjectExists(gomock.Any(), receipt.SubjectID).Return(nil)
	s.mockStore.EXPECT().AppendReceipt(gomock.Any(), receipt).Return(nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	_, err := s.service.Append(context.Background(), receipt, receipt.GrantorID)

	s.Require().NoError(err, "audit emission is best-effort")
}
