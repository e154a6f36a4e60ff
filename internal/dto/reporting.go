package dto

import (
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountTotal aggregates one account's activity within a period.
// ExecutionRatio is executed amount over annual budget; zero when the
// account carries no budget.
type AccountTotal struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Total          int64           `json:"total"`
	BudgetAmount   int64           `json:"budgetAmount"`
	ExecutionRatio decimal.Decimal `json:"executionRatio"`
}

// MonthlySummary is the read-only dashboard aggregate for one period.
type MonthlySummary struct {
	PeriodKey    string                            `json:"periodKey"`
	State        string                            `json:"state"`
	IncomeTotal  int64                             `json:"incomeTotal"`
	ExpenseTotal int64                             `json:"expenseTotal"`
	ByAccount    []AccountTotal                    `json:"byAccount"`
	StatusCounts map[domain.TransmissionStatus]int `json:"statusCounts"`
}
