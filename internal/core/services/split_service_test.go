package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/core/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
	"github.com/haneulsoft/kinderledger/internal/repositories/memory"
	"github.com/stretchr/testify/suite"
)

type SplitServiceTestSuite struct {
	suite.Suite
	repos   portsrepo.RepositoryProvider
	service portssvc.SplitSvcFacade

	source domain.LedgerEntry
}

func (suite *SplitServiceTestSuite) SetupTest() {
	ctx := context.Background()
	suite.repos = memory.NewRepositoryProvider()
	suite.service = services.NewSplitService(suite.repos.LedgerRepo, suite.repos.AccountRepo)

	accounts := []domain.AccountCode{
		{AccountID: "ac9", Code: "411", Name: "급식비", Kind: domain.Expense, IsActive: true},
		{AccountID: "ac10", Code: "412", Name: "교재교구비", Kind: domain.Expense, IsActive: true},
		{AccountID: "ac11", Code: "413", Name: "소모품비", Kind: domain.Expense, IsActive: true},
		{AccountID: "ac-old", Code: "499", Name: "폐지된 과목", Kind: domain.Expense, IsActive: false},
		{AccountID: "ac1", Code: "111", Name: "원비 수입", Kind: domain.Income, IsActive: true},
	}
	for _, account := range accounts {
		suite.Require().NoError(suite.repos.AccountRepo.SaveAccountCode(ctx, account))
	}

	suite.source = domain.LedgerEntry{
		EntryID:            "e1",
		KindergartenID:     "kg1",
		PeriodKey:          domain.PeriodKey("2026-02"),
		Date:               time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Kind:               domain.Expense,
		Amount:             850000,
		AccountID:          "ac9",
		Description:        "마트 일괄 결제",
		CounterpartyName:   "행복마트",
		SourceRef:          &domain.SourceRef{SourceSystem: domain.SourceSystemBank, SourceID: "tx1"},
		TransmissionStatus: domain.Unsent,
	}
	suite.Require().NoError(suite.repos.LedgerRepo.SaveEntry(ctx, suite.source))
}

func threeWaySplit() dto.SplitRequest {
	return dto.SplitRequest{Allocations: []dto.SplitAllocation{
		{AccountID: "ac9", Amount: 700000, Description: "급식 재료"},
		{AccountID: "ac10", Amount: 100000, Description: "학습 교구"},
		{AccountID: "ac11", Amount: 50000, Description: "청소 용품"},
	}}
}

func (suite *SplitServiceTestSuite) TestSplitEntry_ReplacesSourceAtomically() {
	ctx := context.Background()

	splits, err := suite.service.SplitEntry(ctx, "kg1", "e1", threeWaySplit(), "user1")
	suite.Require().NoError(err)
	suite.Require().Len(splits, 3)

	// The source entry is gone, replaced by the split group.
	_, err = suite.repos.LedgerRepo.FindEntryByID(ctx, "kg1", "e1")
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)

	groupID := splits[0].SplitGroupID
	suite.NotEmpty(groupID)
	var total int64
	for _, split := range splits {
		suite.Equal(groupID, split.SplitGroupID)
		suite.Equal(suite.source.Date, split.Date)
		suite.Equal(suite.source.Kind, split.Kind)
		suite.Equal(suite.source.CounterpartyName, split.CounterpartyName)
		suite.Equal(domain.Unsent, split.TransmissionStatus)
		suite.Require().NotNil(split.SourceRef)
		suite.Equal("tx1", split.SourceRef.SourceID)
		total += split.Amount
	}
	suite.Equal(suite.source.Amount, total)

	persisted, err := suite.repos.LedgerRepo.FindEntryByID(ctx, "kg1", splits[1].EntryID)
	suite.Require().NoError(err)
	suite.Equal("ac10", persisted.AccountID)
	suite.Equal(int64(100000), persisted.Amount)
}

func (suite *SplitServiceTestSuite) TestSplitEntry_MismatchWritesNothing() {
	ctx := context.Background()
	req := dto.SplitRequest{Allocations: []dto.SplitAllocation{
		{AccountID: "ac9", Amount: 700000, Description: "급식 재료"},
		{AccountID: "ac10", Amount: 149999, Description: "학습 교구"},
	}}

	_, err := suite.service.SplitEntry(ctx, "kg1", "e1", req, "user1")

	var mismatch *apperrors.SplitMismatchError
	suite.Require().ErrorAs(err, &mismatch)
	suite.Equal(int64(850000), mismatch.SourceAmount)
	suite.Equal(int64(849999), mismatch.Allocated)

	// Being off by one wins no tolerance: the source survives untouched.
	source, err := suite.repos.LedgerRepo.FindEntryByID(ctx, "kg1", "e1")
	suite.Require().NoError(err)
	suite.Equal(int64(850000), source.Amount)
	suite.Empty(source.SplitGroupID)
}

func (suite *SplitServiceTestSuite) TestSplitEntry_RejectsUnknownAccount() {
	ctx := context.Background()
	req := dto.SplitRequest{Allocations: []dto.SplitAllocation{
		{AccountID: "ac9", Amount: 800000, Description: "급식 재료"},
		{AccountID: "ac-missing", Amount: 50000, Description: "어디론가"},
	}}

	_, err := suite.service.SplitEntry(ctx, "kg1", "e1", req, "user1")
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.repos.LedgerRepo.FindEntryByID(ctx, "kg1", "e1")
	suite.NoError(err)
}

func (suite *SplitServiceTestSuite) TestSplitEntry_RejectsInactiveAccount() {
	ctx := context.Background()
	req := dto.SplitRequest{Allocations: []dto.SplitAllocation{
		{AccountID: "ac9", Amount: 800000, Description: "급식 재료"},
		{AccountID: "ac-old", Amount: 50000, Description: "폐지 과목으로"},
	}}

	_, err := suite.service.SplitEntry(ctx, "kg1", "e1", req, "user1")
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "inactive")
}

func (suite *SplitServiceTestSuite) TestSplitEntry_RejectsKindMismatch() {
	ctx := context.Background()
	req := dto.SplitRequest{Allocations: []dto.SplitAllocation{
		{AccountID: "ac9", Amount: 800000, Description: "급식 재료"},
		{AccountID: "ac1", Amount: 50000, Description: "수입 계정으로"},
	}}

	_, err := suite.service.SplitEntry(ctx, "kg1", "e1", req, "user1")
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "INCOME")
}

func (suite *SplitServiceTestSuite) TestSplitEntry_RejectsLockedEntry() {
	ctx := context.Background()
	_, err := suite.repos.PeriodRepo.EnsureOpen(ctx, "kg1", suite.source.PeriodKey, "user1")
	suite.Require().NoError(err)
	locked, err := suite.repos.PeriodRepo.ClosePeriod(ctx, "kg1", suite.source.PeriodKey, "user1", time.Now().UTC())
	suite.Require().NoError(err)
	suite.Equal(1, locked)

	_, err = suite.service.SplitEntry(ctx, "kg1", "e1", threeWaySplit(), "user1")
	suite.Require().ErrorIs(err, apperrors.ErrPeriodLocked)
}

func TestSplitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SplitServiceTestSuite))
}
