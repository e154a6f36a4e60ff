package domain

// AccountKind classifies an account code as income or expense. The cash
// journal has no balance-sheet side; everything is one of these two.
type AccountKind string

const (
	Income  AccountKind = "INCOME"
	Expense AccountKind = "EXPENSE"
)

// UnassignedAccountID is the placeholder account of entries the categorizer
// could not resolve. A period cannot close while any of its entries still
// carries this ID.
const UnassignedAccountID = "UNASSIGNED"

// AccountCode is one line of the chart of accounts (계정과목), e.g.
// code "111" 원비 수입. Reference data: created by configuration, never
// deleted while ledger entries point at it.
type AccountCode struct {
	AccountID    string      `json:"accountID"`
	Code         string      `json:"code"` // external accounting code, e.g. "111"
	Name         string      `json:"name"`
	Kind         AccountKind `json:"kind"`
	BudgetAmount int64       `json:"budgetAmount"` // annual budget, 0 when unbudgeted
	IsActive     bool        `json:"isActive"`
	AuditFields
}
