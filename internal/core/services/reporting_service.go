package services

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portsrepo "github.com/haneulsoft/kinderledger/internal/core/ports/repositories"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
)

// reportingService produces read-only aggregates for the dashboard layer.
// It never mutates the journal.
type reportingService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	periodRepo  portsrepo.PeriodRepository
}

// NewReportingService creates a new ReportingSvcFacade.
func NewReportingService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, periodRepo portsrepo.PeriodRepository) portssvc.ReportingSvcFacade {
	return &reportingService{ledgerRepo: ledgerRepo, accountRepo: accountRepo, periodRepo: periodRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// MonthlySummary aggregates one period: income/expense totals, per-account
// totals with budget execution ratios, and the transmission status
// breakdown. Ratios use decimals only at the edge; ledger arithmetic stays
// in integer minor units.
func (s *reportingService) MonthlySummary(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*dto.MonthlySummary, error) {
	state := domain.PeriodOpen
	period, err := s.periodRepo.FindPeriod(ctx, kindergartenID, periodKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		// A month nothing touched yet reports as an empty open period.
	} else {
		state = period.State
	}

	totalsByAccount, err := s.ledgerRepo.SumAmountsByAccount(ctx, kindergartenID, periodKey)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.ledgerRepo.CountByTransmissionStatus(ctx, kindergartenID, periodKey)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(totalsByAccount))
	for accountID := range totalsByAccount {
		accountIDs = append(accountIDs, accountID)
	}
	accounts, err := s.accountRepo.FindAccountCodesByIDs(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	summary := &dto.MonthlySummary{
		PeriodKey:    periodKey.String(),
		State:        string(state),
		ByAccount:    []dto.AccountTotal{},
		StatusCounts: statusCounts,
	}

	for accountID, total := range totalsByAccount {
		account, found := accounts[accountID]
		if !found {
			// Unassigned entries have no chart row; report them bare.
			summary.ByAccount = append(summary.ByAccount, dto.AccountTotal{
				AccountID: accountID,
				Name:      accountID,
				Total:     total,
			})
			continue
		}

		ratio := decimal.Zero
		if account.BudgetAmount > 0 {
			ratio = decimal.NewFromInt(total).
				Div(decimal.NewFromInt(account.BudgetAmount)).
				Round(4)
		}
		summary.ByAccount = append(summary.ByAccount, dto.AccountTotal{
			AccountID:      accountID,
			Code:           account.Code,
			Name:           account.Name,
			Kind:           string(account.Kind),
			Total:          total,
			BudgetAmount:   account.BudgetAmount,
			ExecutionRatio: ratio,
		})

		switch account.Kind {
		case domain.Income:
			summary.IncomeTotal += total
		case domain.Expense:
			summary.ExpenseTotal += total
		}
	}

	sort.Slice(summary.ByAccount, func(i, j int) bool {
		return summary.ByAccount[i].Code < summary.ByAccount[j].Code
	})
	return summary, nil
}
