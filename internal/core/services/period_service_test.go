package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/core/services"
	"github.com/haneulsoft/kinderledger/internal/repositories/memory"
	"github.com/stretchr/testify/suite"
)

type PeriodServiceTestSuite struct {
	suite.Suite
	repos   portsrepo.RepositoryProvider
	service portssvc.PeriodSvcFacade

	periodKey domain.PeriodKey
}

func (suite *PeriodServiceTestSuite) SetupTest() {
	suite.repos = memory.NewRepositoryProvider()
	suite.service = services.NewPeriodService(suite.repos.PeriodRepo, suite.repos.LedgerRepo)
	suite.periodKey = domain.PeriodKey("2026-02")
}

// seedEntry persists a minimal journal entry in the suite's period.
func (suite *PeriodServiceTestSuite) seedEntry(entryID, accountID string, status domain.TransmissionStatus) {
	ctx := context.Background()
	_, err := suite.repos.PeriodRepo.EnsureOpen(ctx, "kg1", suite.periodKey, "user1")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repos.LedgerRepo.SaveEntry(ctx, domain.LedgerEntry{
		EntryID:            entryID,
		KindergartenID:     "kg1",
		PeriodKey:          suite.periodKey,
		Date:               time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Kind:               domain.Expense,
		Amount:             10000,
		AccountID:          accountID,
		Description:        fmt.Sprintf("지출 %s", entryID),
		TransmissionStatus: status,
	}))
}

func (suite *PeriodServiceTestSuite) TestPreviewClose() {
	ctx := context.Background()
	suite.seedEntry("e1", "ac9", domain.Sent)
	suite.seedEntry("e2", "ac9", domain.Unsent)
	suite.seedEntry("e3", domain.UnassignedAccountID, domain.Failed)

	preview, err := suite.service.PreviewClose(ctx, "kg1", suite.periodKey)

	suite.Require().NoError(err)
	suite.Equal(3, preview.EntryCount)
	suite.Equal(1, preview.UnassignedCount)
	suite.Equal(2, preview.UntransmittedCount)
	suite.False(preview.CanClose)
}

func (suite *PeriodServiceTestSuite) TestClose_BlockedByUnassignedEntries() {
	ctx := context.Background()
	suite.seedEntry("e1", domain.UnassignedAccountID, domain.Unsent)

	_, err := suite.service.Close(ctx, "kg1", suite.periodKey, "user1")

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "unassigned")

	// The period stays open and nothing was locked.
	period, err := suite.service.GetPeriod(ctx, "kg1", suite.periodKey)
	suite.Require().NoError(err)
	suite.Equal(domain.PeriodOpen, period.State)
	entry, err := suite.repos.LedgerRepo.FindEntryByID(ctx, "kg1", "e1")
	suite.Require().NoError(err)
	suite.False(entry.Locked)
}

func (suite *PeriodServiceTestSuite) TestClose_LocksEveryEntry() {
	ctx := context.Background()
	suite.seedEntry("e1", "ac9", domain.Sent)
	suite.seedEntry("e2", "ac9", domain.Unsent)

	result, err := suite.service.Close(ctx, "kg1", suite.periodKey, "director")

	suite.Require().NoError(err)
	suite.Equal(2, result.LockedCount)
	suite.Equal(1, result.UntransmittedWarning)
	suite.False(result.ClosedAt.IsZero())

	period, err := suite.service.GetPeriod(ctx, "kg1", suite.periodKey)
	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, period.State)
	suite.Equal("director", period.ClosedBy)
	suite.Require().NotNil(period.ClosedAt)

	for _, entryID := range []string{"e1", "e2"} {
		entry, err := suite.repos.LedgerRepo.FindEntryByID(ctx, "kg1", entryID)
		suite.Require().NoError(err)
		suite.True(entry.Locked)
	}
}

func (suite *PeriodServiceTestSuite) TestClose_SecondCloseFails() {
	ctx := context.Background()
	suite.seedEntry("e1", "ac9", domain.Sent)

	_, err := suite.service.Close(ctx, "kg1", suite.periodKey, "user1")
	suite.Require().NoError(err)

	_, err = suite.service.Close(ctx, "kg1", suite.periodKey, "user1")
	suite.Require().ErrorIs(err, apperrors.ErrPeriodClosed)
}

func (suite *PeriodServiceTestSuite) TestClose_UnknownPeriod() {
	ctx := context.Background()

	_, err := suite.service.Close(ctx, "kg1", domain.PeriodKey("1999-01"), "user1")
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PeriodServiceTestSuite) TestLockedEntryStillAcceptsTransmissionStatus() {
	ctx := context.Background()
	suite.seedEntry("e1", "ac9", domain.Failed)

	_, err := suite.service.Close(ctx, "kg1", suite.periodKey, "user1")
	suite.Require().NoError(err)

	// The one permitted mutation after close: a late transmission outcome.
	err = suite.repos.LedgerRepo.UpdateTransmissionStatus(ctx, "e1", domain.Sent, "user1", time.Now().UTC())
	suite.Require().NoError(err)

	entry, err := suite.repos.LedgerRepo.FindEntryByID(ctx, "kg1", "e1")
	suite.Require().NoError(err)
	suite.Equal(domain.Sent, entry.TransmissionStatus)
	suite.True(entry.Locked)

	// Everything else stays rejected.
	err = suite.repos.LedgerRepo.UpdateEntryAccount(ctx, "kg1", "e1", "ac10", "user1", time.Now().UTC())
	suite.Require().ErrorIs(err, apperrors.ErrPeriodLocked)
	err = suite.repos.LedgerRepo.DeleteEntry(ctx, "kg1", "e1")
	suite.Require().ErrorIs(err, apperrors.ErrPeriodLocked)
}

func (suite *PeriodServiceTestSuite) TestListPeriods() {
	ctx := context.Background()
	for _, key := range []string{"2026-01", "2026-02", "2026-03"} {
		_, err := suite.repos.PeriodRepo.EnsureOpen(ctx, "kg1", domain.PeriodKey(key), "user1")
		suite.Require().NoError(err)
	}

	periods, err := suite.service.ListPeriods(ctx, "kg1")
	suite.Require().NoError(err)
	suite.Require().Len(periods, 3)
	suite.Equal(domain.PeriodKey("2026-03"), periods[0].PeriodKey)
	suite.Equal(domain.PeriodKey("2026-01"), periods[2].PeriodKey)
}

func TestPeriodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}
