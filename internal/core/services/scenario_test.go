package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/core/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
	"github.com/haneulsoft/kinderledger/internal/portal"
	"github.com/haneulsoft/kinderledger/internal/repositories/memory"
	"github.com/haneulsoft/kinderledger/internal/vault"
	"github.com/stretchr/testify/require"
)

// newTestContainer wires the full service stack over in-memory storage and
// the fake portal, the way a month of real usage would exercise it.
func newTestContainer(t *testing.T) (*portssvc.ServiceContainer, *portal.FakeDialer) {
	t.Helper()
	v, err := vault.New("scenario-vault-secret")
	require.NoError(t, err)
	dialer := portal.NewFakeDialer()
	container := services.NewServiceContainer(memory.NewRepositoryProvider(), v, dialer)
	return container, dialer
}

// TestMonthlyTuitionWorkflow walks one month end to end: configure the
// chart, import a bank batch, transmit, report, close.
func TestMonthlyTuitionWorkflow(t *testing.T) {
	ctx := context.Background()
	container, dialer := newTestContainer(t)
	februaryKey := domain.PeriodKey("2026-02")

	tuition, err := container.Chart.CreateAccountCode(ctx, dto.CreateAccountCodeRequest{
		Code: "111", Name: "원비 수입", Kind: "INCOME", BudgetAmount: 120000000,
	}, "director")
	require.NoError(t, err)
	_, err = container.Chart.CreateKeywordRule(ctx, dto.CreateKeywordRuleRequest{
		Keyword: "원비", AccountID: tuition.AccountID, Priority: 1,
	}, "director")
	require.NoError(t, err)
	require.NoError(t, container.Credential.UpsertCredential(ctx, "kg1", dto.UpsertCredentialRequest{
		LoginID: "kg1-admin", Secret: "portal-pass",
	}, "director"))

	imported, err := container.Importer.ImportBatch(ctx, "kg1", februaryKey, []domain.ExternalTransaction{{
		SourceID:       "bank-tx-4417",
		SourceSystem:   domain.SourceSystemBank,
		Date:           time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Amount:         850000,
		RawDescription: "2월 원비 김민준",
		Direction:      domain.CreditDirection,
	}}, "teacher")
	require.NoError(t, err)
	require.Equal(t, 1, imported.AcceptedCount)
	entry := imported.Accepted[0]
	require.Equal(t, tuition.AccountID, entry.AccountID)
	require.Equal(t, domain.Unsent, entry.TransmissionStatus)

	transmitted, err := container.Transmitter.Transmit(ctx, "kg1", februaryKey, []string{entry.EntryID}, "teacher")
	require.NoError(t, err)
	require.Equal(t, 1, transmitted.SuccessCount)
	require.Equal(t, []string{entry.EntryID}, dialer.Submitted())

	report, err := container.Reporting.MonthlySummary(ctx, "kg1", februaryKey)
	require.NoError(t, err)
	require.Equal(t, int64(850000), report.IncomeTotal)
	require.Equal(t, int64(0), report.ExpenseTotal)
	require.Equal(t, 1, report.StatusCounts[domain.Sent])

	preview, err := container.Period.PreviewClose(ctx, "kg1", februaryKey)
	require.NoError(t, err)
	require.True(t, preview.CanClose)
	require.Zero(t, preview.UntransmittedCount)

	closed, err := container.Period.Close(ctx, "kg1", februaryKey, "director")
	require.NoError(t, err)
	require.Equal(t, 1, closed.LockedCount)

	// A late re-transmit of the closed month is a no-op, not an error.
	again, err := container.Transmitter.Transmit(ctx, "kg1", februaryKey, []string{entry.EntryID}, "teacher")
	require.NoError(t, err)
	require.Equal(t, 1, again.SkippedAlreadySent)
	require.Zero(t, again.SuccessCount)

	// And February accepts no new entries.
	_, err = container.Importer.ImportBatch(ctx, "kg1", februaryKey, []domain.ExternalTransaction{{
		SourceID:       "bank-tx-9999",
		SourceSystem:   domain.SourceSystemBank,
		Date:           time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
		Amount:         50000,
		RawDescription: "늦은 입금",
		Direction:      domain.CreditDirection,
	}}, "teacher")
	require.ErrorIs(t, err, apperrors.ErrPeriodClosed)
}

// TestSplitWorkflow imports one card settlement, rejects an unbalanced
// split, then applies the balanced three-way split and transmits it.
func TestSplitWorkflow(t *testing.T) {
	ctx := context.Background()
	container, dialer := newTestContainer(t)
	februaryKey := domain.PeriodKey("2026-02")

	accountIDs := make(map[string]string, 3)
	for _, spec := range []struct{ code, name string }{
		{"411", "급식비"},
		{"412", "교재교구비"},
		{"413", "소모품비"},
	} {
		account, err := container.Chart.CreateAccountCode(ctx, dto.CreateAccountCodeRequest{
			Code: spec.code, Name: spec.name, Kind: "EXPENSE",
		}, "director")
		require.NoError(t, err)
		accountIDs[spec.code] = account.AccountID
	}
	require.NoError(t, container.Chart.SetDefaultMapping(ctx, "kg1", dto.SetDefaultMappingRequest{
		CreditAccountID: accountIDs["411"], DebitAccountID: accountIDs["411"],
	}, "director"))
	require.NoError(t, container.Credential.UpsertCredential(ctx, "kg1", dto.UpsertCredentialRequest{
		LoginID: "kg1-admin", Secret: "portal-pass",
	}, "director"))

	imported, err := container.Importer.ImportBatch(ctx, "kg1", februaryKey, []domain.ExternalTransaction{{
		SourceID:       "bank-tx-7001",
		SourceSystem:   domain.SourceSystemBank,
		Date:           time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
		Amount:         850000,
		RawDescription: "행복마트 일괄 결제",
		Direction:      domain.DebitDirection,
	}}, "teacher")
	require.NoError(t, err)
	source := imported.Accepted[0]

	// 1,000 won short: nothing happens.
	_, err = container.Splitter.SplitEntry(ctx, "kg1", source.EntryID, dto.SplitRequest{
		Allocations: []dto.SplitAllocation{
			{AccountID: accountIDs["411"], Amount: 700000, Description: "급식 재료"},
			{AccountID: accountIDs["412"], Amount: 100000, Description: "학습 교구"},
			{AccountID: accountIDs["413"], Amount: 49000, Description: "청소 용품"},
		},
	}, "teacher")
	var mismatch *apperrors.SplitMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, int64(849000), mismatch.Allocated)
	stillThere, err := container.Ledger.GetEntry(ctx, "kg1", source.EntryID)
	require.NoError(t, err)
	require.Equal(t, int64(850000), stillThere.Amount)

	splits, err := container.Splitter.SplitEntry(ctx, "kg1", source.EntryID, dto.SplitRequest{
		Allocations: []dto.SplitAllocation{
			{AccountID: accountIDs["411"], Amount: 700000, Description: "급식 재료"},
			{AccountID: accountIDs["412"], Amount: 100000, Description: "학습 교구"},
			{AccountID: accountIDs["413"], Amount: 50000, Description: "청소 용품"},
		},
	}, "teacher")
	require.NoError(t, err)
	require.Len(t, splits, 3)

	// The split replaces the source; the duplicate check still holds
	// because the splits inherit its source ref.
	reimported, err := container.Importer.ImportBatch(ctx, "kg1", februaryKey, []domain.ExternalTransaction{{
		SourceID:       "bank-tx-7001",
		SourceSystem:   domain.SourceSystemBank,
		Date:           time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
		Amount:         850000,
		RawDescription: "행복마트 일괄 결제",
		Direction:      domain.DebitDirection,
	}}, "teacher")
	require.NoError(t, err)
	require.Equal(t, 1, reimported.SkippedDuplicates)

	ids := make([]string, len(splits))
	for i, split := range splits {
		ids[i] = split.EntryID
	}
	transmitted, err := container.Transmitter.Transmit(ctx, "kg1", februaryKey, ids, "teacher")
	require.NoError(t, err)
	require.Equal(t, 3, transmitted.SuccessCount)
	require.Equal(t, ids, dialer.Submitted())

	report, err := container.Reporting.MonthlySummary(ctx, "kg1", februaryKey)
	require.NoError(t, err)
	require.Equal(t, int64(850000), report.ExpenseTotal)
	require.Len(t, report.ByAccount, 3)

	closed, err := container.Period.Close(ctx, "kg1", februaryKey, "director")
	require.NoError(t, err)
	require.Equal(t, 3, closed.LockedCount)
}
