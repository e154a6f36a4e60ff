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
	"github.com/haneulsoft/kinderledger/internal/dto"
	"github.com/haneulsoft/kinderledger/internal/portal"
	"github.com/haneulsoft/kinderledger/internal/repositories/memory"
	"github.com/haneulsoft/kinderledger/internal/vault"
	"github.com/stretchr/testify/suite"
)

type TransmitServiceTestSuite struct {
	suite.Suite
	repos   portsrepo.RepositoryProvider
	dialer  *portal.FakeDialer
	service portssvc.TransmitSvcFacade

	periodKey domain.PeriodKey
}

func (suite *TransmitServiceTestSuite) SetupTest() {
	ctx := context.Background()
	suite.repos = memory.NewRepositoryProvider()
	suite.dialer = portal.NewFakeDialer()
	suite.periodKey = domain.PeriodKey("2026-02")

	v, err := vault.New("unit-test-vault-secret")
	suite.Require().NoError(err)
	credentialSvc := services.NewCredentialService(suite.repos.CredentialRepo, v)
	suite.service = services.NewTransmitService(
		suite.repos.LedgerRepo,
		suite.repos.AccountRepo,
		suite.repos.AttemptRepo,
		credentialSvc,
		suite.dialer,
	)

	suite.Require().NoError(suite.repos.AccountRepo.SaveAccountCode(ctx, domain.AccountCode{
		AccountID: "ac1", Code: "111", Name: "원비 수입", Kind: domain.Income, IsActive: true,
	}))
	suite.Require().NoError(credentialSvc.UpsertCredential(ctx, "kg1", dto.UpsertCredentialRequest{
		LoginID: "kg1-admin",
		Secret:  "portal-pass",
	}, "user1"))
}

func (suite *TransmitServiceTestSuite) seedEntry(entryID string, status domain.TransmissionStatus) {
	suite.seedEntryOn(entryID, "ac1", status)
}

func (suite *TransmitServiceTestSuite) seedEntryOn(entryID, accountID string, status domain.TransmissionStatus) {
	suite.Require().NoError(suite.repos.LedgerRepo.SaveEntry(context.Background(), domain.LedgerEntry{
		EntryID:            entryID,
		KindergartenID:     "kg1",
		PeriodKey:          suite.periodKey,
		Date:               time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		Kind:               domain.Income,
		Amount:             850000,
		AccountID:          accountID,
		Description:        fmt.Sprintf("2월 원비 %s", entryID),
		TransmissionStatus: status,
	}))
}

func (suite *TransmitServiceTestSuite) entryStatus(entryID string) domain.TransmissionStatus {
	entry, err := suite.repos.LedgerRepo.FindEntryByID(context.Background(), "kg1", entryID)
	suite.Require().NoError(err)
	return entry.TransmissionStatus
}

func (suite *TransmitServiceTestSuite) TestTransmit_PreservesSubmissionOrder() {
	ctx := context.Background()
	for _, id := range []string{"e1", "e2", "e3"} {
		suite.seedEntry(id, domain.Unsent)
	}

	summary, err := suite.service.Transmit(ctx, "kg1", suite.periodKey, []string{"e2", "e3", "e1"}, "user1")

	suite.Require().NoError(err)
	suite.Equal(3, summary.SuccessCount)
	suite.Empty(summary.Failures)
	suite.Equal([]string{"e2", "e3", "e1"}, suite.dialer.Submitted())
	suite.Equal(1, suite.dialer.Logins())

	for _, id := range []string{"e1", "e2", "e3"} {
		suite.Equal(domain.Sent, suite.entryStatus(id))
		attempts, err := suite.service.ListAttempts(ctx, "kg1", id)
		suite.Require().NoError(err)
		suite.Require().Len(attempts, 1)
		suite.Equal(domain.AttemptSuccess, attempts[0].Outcome)
	}
}

func (suite *TransmitServiceTestSuite) TestTransmit_SkipsAlreadySent() {
	ctx := context.Background()
	suite.seedEntry("e1", domain.Sent)
	suite.seedEntry("e2", domain.Unsent)

	summary, err := suite.service.Transmit(ctx, "kg1", suite.periodKey, []string{"e1", "e2"}, "user1")

	suite.Require().NoError(err)
	suite.Equal(1, summary.SuccessCount)
	suite.Equal(1, summary.SkippedAlreadySent)
	suite.Equal([]string{"e2"}, suite.dialer.Submitted())

	// Skipping records nothing: the audit trail of e1 stays empty.
	attempts, err := suite.service.ListAttempts(ctx, "kg1", "e1")
	suite.Require().NoError(err)
	suite.Empty(attempts)
}

func (suite *TransmitServiceTestSuite) TestTransmit_PerEntryFailureDoesNotAbortRun() {
	ctx := context.Background()
	for _, id := range []string{"e1", "e2", "e3"} {
		suite.seedEntry(id, domain.Unsent)
	}
	suite.dialer.FailEntry("e2", fmt.Errorf("%w: duplicate voucher number", apperrors.ErrPortalRejection))

	summary, err := suite.service.Transmit(ctx, "kg1", suite.periodKey, []string{"e1", "e2", "e3"}, "user1")

	suite.Require().NoError(err)
	suite.Equal(2, summary.SuccessCount)
	suite.Require().Len(summary.Failures, 1)
	suite.Equal("e2", summary.Failures[0].EntryID)
	suite.Contains(summary.Failures[0].Reason, "duplicate voucher")

	suite.Equal(domain.Sent, suite.entryStatus("e1"))
	suite.Equal(domain.Failed, suite.entryStatus("e2"))
	suite.Equal(domain.Sent, suite.entryStatus("e3"))

	attempts, err := suite.service.ListAttempts(ctx, "kg1", "e2")
	suite.Require().NoError(err)
	suite.Require().Len(attempts, 1)
	suite.Equal(domain.AttemptFailure, attempts[0].Outcome)
	suite.Contains(attempts[0].ErrorDetail, "duplicate voucher")
}

func (suite *TransmitServiceTestSuite) TestTransmit_FailedEntriesAreRetryable() {
	ctx := context.Background()
	suite.seedEntry("e1", domain.Unsent)
	suite.dialer.FailEntry("e1", fmt.Errorf("%w: portal maintenance window", apperrors.ErrPortalUnreachable))

	first, err := suite.service.Transmit(ctx, "kg1", suite.periodKey, []string{"e1"}, "user1")
	suite.Require().NoError(err)
	suite.Require().Len(first.Failures, 1)
	suite.Equal(domain.Failed, suite.entryStatus("e1"))

	suite.dialer.FailEntry("e1", nil)
	second, err := suite.service.Transmit(ctx, "kg1", suite.periodKey, first.FailedEntryIDs(), "user1")
	suite.Require().NoError(err)
	suite.Equal(1, second.SuccessCount)
	suite.Equal(domain.Sent, suite.entryStatus("e1"))

	// Two attempts on record, failure first.
	attempts, err := suite.service.ListAttempts(ctx, "kg1", "e1")
	suite.Require().NoError(err)
	suite.Require().Len(attempts, 2)
	suite.Equal(domain.AttemptFailure, attempts[0].Outcome)
	suite.Equal(domain.AttemptSuccess, attempts[1].Outcome)
}

func (suite *TransmitServiceTestSuite) TestTransmit_LoginFailureFailsWholeBatch() {
	ctx := context.Background()
	suite.seedEntry("e1", domain.Unsent)
	suite.seedEntry("e2", domain.Unsent)
	suite.dialer.LoginErr = fmt.Errorf("%w: invalid portal credentials", apperrors.ErrPortalRejection)

	summary, err := suite.service.Transmit(ctx, "kg1", suite.periodKey, []string{"e1", "e2"}, "user1")

	// Authentication failure is a batch outcome, not a process error.
	suite.Require().NoError(err)
	suite.Equal(0, summary.SuccessCount)
	suite.Require().Len(summary.Failures, 2)
	suite.Empty(suite.dialer.Submitted())
	suite.Equal(domain.Failed, suite.entryStatus("e1"))
	suite.Equal(domain.Failed, suite.entryStatus("e2"))

	attempts, err := suite.service.ListAttempts(ctx, "kg1", "e1")
	suite.Require().NoError(err)
	suite.Require().Len(attempts, 1)
	suite.Contains(attempts[0].ErrorDetail, "login")
}

func (suite *TransmitServiceTestSuite) TestTransmit_MissingCredentialFailsWholeBatch() {
	ctx := context.Background()
	suite.Require().NoError(suite.repos.LedgerRepo.SaveEntry(ctx, domain.LedgerEntry{
		EntryID:            "e1",
		KindergartenID:     "kg-no-cred",
		PeriodKey:          suite.periodKey,
		Date:               time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		Kind:               domain.Income,
		Amount:             850000,
		AccountID:          "ac1",
		Description:        "2월 원비",
		TransmissionStatus: domain.Unsent,
	}))

	summary, err := suite.service.Transmit(ctx, "kg-no-cred", suite.periodKey, []string{"e1"}, "user1")

	suite.Require().NoError(err)
	suite.Equal(0, summary.SuccessCount)
	suite.Require().Len(summary.Failures, 1)
	suite.Contains(summary.Failures[0].Reason, "credential")
	suite.Equal(0, suite.dialer.Logins())

	entry, err := suite.repos.LedgerRepo.FindEntryByID(ctx, "kg-no-cred", "e1")
	suite.Require().NoError(err)
	suite.Equal(domain.Failed, entry.TransmissionStatus)
}

func (suite *TransmitServiceTestSuite) TestTransmit_UnassignedEntryIsRejectedUpfront() {
	ctx := context.Background()
	suite.seedEntryOn("e1", domain.UnassignedAccountID, domain.Unsent)

	summary, err := suite.service.Transmit(ctx, "kg1", suite.periodKey, []string{"e1"}, "user1")

	suite.Require().NoError(err)
	suite.Require().Len(summary.Failures, 1)
	suite.Contains(summary.Failures[0].Reason, "no account assigned")
	suite.Empty(suite.dialer.Submitted())
	suite.Equal(domain.Unsent, suite.entryStatus("e1"))
}

func (suite *TransmitServiceTestSuite) TestTransmit_WrongPeriodEntryIsRejected() {
	ctx := context.Background()
	suite.seedEntry("e1", domain.Unsent)

	summary, err := suite.service.Transmit(ctx, "kg1", domain.PeriodKey("2026-03"), []string{"e1"}, "user1")

	suite.Require().NoError(err)
	suite.Require().Len(summary.Failures, 1)
	suite.Contains(summary.Failures[0].Reason, "belongs to period 2026-02")
}

func (suite *TransmitServiceTestSuite) TestTransmit_CancellationLeavesUntouchedEntriesAlone() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	suite.seedEntry("e1", domain.Unsent)
	suite.seedEntry("e2", domain.Failed)

	summary, err := suite.service.Transmit(ctx, "kg1", suite.periodKey, []string{"e1", "e2"}, "user1")

	suite.Require().ErrorIs(err, context.Canceled)
	suite.Require().NotNil(summary)
	suite.Equal(0, summary.SuccessCount)
	suite.Empty(summary.Failures)

	// Cancellation never invents a FAILED status.
	suite.Equal(domain.Unsent, suite.entryStatus("e1"))
	suite.Equal(domain.Failed, suite.entryStatus("e2"))
	attempts, err := suite.service.ListAttempts(context.Background(), "kg1", "e1")
	suite.Require().NoError(err)
	suite.Empty(attempts)
}

func (suite *TransmitServiceTestSuite) TestListAttempts_UnknownEntry() {
	_, err := suite.service.ListAttempts(context.Background(), "kg1", "ghost")
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func TestTransmitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransmitServiceTestSuite))
}
