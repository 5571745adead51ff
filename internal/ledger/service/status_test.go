package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"pactum/internal/ledger/models"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/platform/sentinel"
	"pactum/pkg/testutil"
)

// expiringReceipt builds a genesis receipt that expires 100 seconds after issue.
func (s *ServiceSuite) expiringReceipt() *models.ConsentReceipt {
	return testutil.NewReceiptBuilder(s.signer).
		ExpiresAt(testutil.BaseTime.Add(100 * time.Second)).
		MustBuild()
}

func (s *ServiceSuite) TestStatus_ActiveBeforeExpiry() {
	receipt := s.expiringReceipt()
	at := testutil.BaseTime.Add(50 * time.Second)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)

	result, err := s.service.Status(context.Background(), receipt.Hash, &at)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
	s.True(result.At.Equal(at))
	s.Nil(result.RevokedAt)
}

func (s *ServiceSuite) TestStatus_ExpiredAfterExpiry() {
	receipt := s.expiringReceipt()
	at := testutil.BaseTime.Add(150 * time.Second)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)

	result, err := s.service.Status(context.Background(), receipt.Hash, &at)

	s.Require().NoError(err)
	s.Equal(models.StatusExpired, result.Status)
}

func (s *ServiceSuite) TestStatus_ActiveAtExactExpiryInstant() {
	receipt := s.expiringReceipt()
	at := *receipt.ExpiresAt
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)

	result, err := s.service.Status(context.Background(), receipt.Hash, &at)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status, "expiry is exclusive of the expiry instant itself")
}

func (s *ServiceSuite) TestStatus_RevokedWinsOverExpired() {
	receipt := s.expiringReceipt()
	revocation := testutil.NewTestRevocation(s.signer, receipt.Hash, testutil.BaseTime.Add(60*time.Second))
	at := testutil.BaseTime.Add(150 * time.Second)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(revocation, nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, &at)

	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, result.Status)
	s.Require().NotNil(result.RevokedAt)
	s.True(result.RevokedAt.Equal(revocation.RevokedAt))
}

func (s *ServiceSuite) TestStatus_RevocationNotYetEffective() {
	receipt := s.expiringReceipt()
	revocation := testutil.NewTestRevocation(s.signer, receipt.Hash, testutil.BaseTime.Add(60*time.Second))
	at := testutil.BaseTime.Add(30 * time.Second)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(revocation, nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, &at)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status, "a receipt is not revoked before its revocation instant")
	s.Nil(result.RevokedAt)
}

func (s *ServiceSuite) TestStatus_NoExpiryStaysActive() {
	receipt := s.newGenesisReceipt()
	at := testutil.BaseTime.AddDate(10, 0, 0)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)

	result, err := s.service.Status(context.Background(), receipt.Hash, &at)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
}

func (s *ServiceSuite) TestStatus_UnknownReceipt() {
	receipt := s.newGenesisReceipt()
	at := testutil.BaseTime
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Status(context.Background(), receipt.Hash, &at)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnknownReceipt), "expected CodeUnknownReceipt for unknown hash")
}

func (s *ServiceSuite) TestStatus_DefaultTimeUsesNow() {
	receipt := s.newGenesisReceipt()
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)

	before := time.Now().UTC()
	result, err := s.service.Status(context.Background(), receipt.Hash, nil)
	after := time.Now().UTC()

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
	s.False(result.At.Before(before))
	s.False(result.At.After(after))
}

func (s *ServiceSuite) TestStatus_CacheHitSkipsStore() {
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.StatusActive, nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
}

func (s *ServiceSuite) TestStatus_CacheHitRevokedLoadsRevocationTime() {
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	revocation := testutil.NewTestRevocation(s.signer, receipt.Hash, testutil.BaseTime.Add(time.Hour))
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.StatusRevoked, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(revocation, nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, result.Status)
	s.Require().NotNil(result.RevokedAt)
	s.True(result.RevokedAt.Equal(revocation.RevokedAt))
}

func (s *ServiceSuite) TestStatus_CacheHitRevocationLookupFailureRecomputes() {
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	revocation := testutil.NewTestRevocation(s.signer, receipt.Hash, testutil.BaseTime.Add(time.Hour))
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.StatusRevoked, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, errors.New("connection reset"))
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(revocation, nil)
	s.mockCache.EXPECT().SaveStatus(gomock.Any(), receipt.Hash, models.StatusRevoked).Return(nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, result.Status)
	s.Require().NotNil(result.RevokedAt)
}

func (s *ServiceSuite) TestStatus_CacheMissDerivesAndSaves() {
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.Status(""), sentinel.ErrNotFound)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound).Times(2)
	s.mockCache.EXPECT().SaveStatus(gomock.Any(), receipt.Hash, models.StatusActive).Return(nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
}

func (s *ServiceSuite) TestStatus_CacheReadFailureFallsBackToStore() {
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.Status(""), errors.New("redis down"))
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound).Times(2)
	s.mockCache.EXPECT().SaveStatus(gomock.Any(), receipt.Hash, models.StatusActive).Return(nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
}

func (s *ServiceSuite) TestStatus_ExplicitInstantBypassesCache() {
	s.useStatusCache()
	receipt := s.expiringReceipt()
	at := testutil.BaseTime.Add(50 * time.Second)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)

	result, err := s.service.Status(context.Background(), receipt.Hash, &at)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
}

func (s *ServiceSuite) TestStatus_ImminentExpirySkipsCacheWrite() {
	s.useStatusCache()
	issued := time.Now().UTC().Truncate(time.Second)
	receipt := testutil.NewReceiptBuilder(s.signer).
		IssuedAt(issued).
		ExpiresAt(issued.Add(30 * time.Second)).
		MustBuild()
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.Status(""), sentinel.ErrNotFound)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)
	s.mockCache.EXPECT().TTL().Return(5 * time.Minute)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
}

func (s *ServiceSuite) TestStatus_ExpiredIsAlwaysCached() {
	s.useStatusCache()
	issued := time.Now().UTC().Truncate(time.Second).Add(-2 * time.Hour)
	receipt := testutil.NewReceiptBuilder(s.signer).
		IssuedAt(issued).
		ExpiresAt(issued.Add(time.Hour)).
		MustBuild()
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.Status(""), sentinel.ErrNotFound)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)
	s.mockCache.EXPECT().SaveStatus(gomock.Any(), receipt.Hash, models.StatusExpired).Return(nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusExpired, result.Status, "a past expiry can never flip back")
}

func (s *ServiceSuite) TestStatus_CacheWriteFailureDoesNotFail() {
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.Status(""), sentinel.ErrNotFound)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound).Times(2)
	s.mockCache.EXPECT().SaveStatus(gomock.Any(), receipt.Hash, models.StatusActive).Return(errors.New("redis down"))

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
}

func (s *ServiceSuite) TestStatus_PendingRevocationSkipsCacheWrite() {
	// The receipt is still active, but a future-dated revocation flips the
	// status at its instant with no invalidation to follow. A cached active
	// entry could outlive that instant, so nothing is written.
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	revocation := testutil.NewTestRevocation(s.signer, receipt.Hash, time.Now().UTC().Add(time.Hour))
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.Status(""), sentinel.ErrNotFound)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(revocation, nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status)
}

func (s *ServiceSuite) TestStatus_RevocationDuringDerivationSkipsCacheWrite() {
	// A revocation committed after the derivation read has already
	// invalidated the cache; writing the stale active status now would pin
	// it for a full TTL. The pre-write re-read catches the new record.
	s.useStatusCache()
	receipt := s.newGenesisReceipt()
	revocation := testutil.NewTestRevocation(s.signer, receipt.Hash, time.Now().UTC().Add(-time.Second))
	s.mockCache.EXPECT().FindStatus(gomock.Any(), receipt.Hash).Return(models.Status(""), sentinel.ErrNotFound)
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)
	s.mockStore.EXPECT().FindRevocation(gomock.Any(), receipt.Hash).Return(revocation, nil)

	result, err := s.service.Status(context.Background(), receipt.Hash, nil)

	s.Require().NoError(err)
	s.Equal(models.StatusActive, result.Status, "the response reflects the derivation-time read")
}

func (s *ServiceSuite) TestGetReceipt_Found() {
	receipt := s.newGenesisReceipt()
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(receipt, nil)

	found, err := s.service.GetReceipt(context.Background(), receipt.Hash)

	s.Require().NoError(err)
	s.Equal(receipt.Hash, found.Hash)
}

func (s *ServiceSuite) TestGetReceipt_NotFound() {
	receipt := s.newGenesisReceipt()
	s.mockStore.EXPECT().FindByHash(gomock.Any(), receipt.Hash).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.GetReceipt(context.Background(), receipt.Hash)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "expected CodeNotFound for missing receipt")
}

func (s *ServiceSuite) TestListSubjectReceipts_ReturnsChainInOrder() {
	chain := s.newChain(testutil.TestIDs.SubjectID1, 3)
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID1).Return(chain, nil)

	receipts, err := s.service.ListSubjectReceipts(context.Background(), testutil.TestIDs.SubjectID1)

	s.Require().NoError(err)
	s.Require().Len(receipts, 3)
	s.True(receipts[0].IsGenesis())
	s.Equal(receipts[0].Hash, receipts[1].PrevHash)
}

func (s *ServiceSuite) TestListSubjectReceipts_EmptyForUnknownSubject() {
	s.mockStore.EXPECT().ListBySubject(gomock.Any(), testutil.TestIDs.SubjectID2).Return(nil, nil)

	receipts, err := s.service.ListSubjectReceipts(context.Background(), testutil.TestIDs.SubjectID2)

	s.Require().NoError(err)
	s.Empty(receipts)
}
