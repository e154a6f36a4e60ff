package models

// AccountKind distinguishes income from expense account codes.
type AccountKind string

const (
	Income  AccountKind = "INCOME"
	Expense AccountKind = "EXPENSE"
)

// AccountCode is the DB row shape for one line of the chart of accounts.
type AccountCode struct {
	AccountID    string      `db:"account_id"`
	Code         string      `db:"code"`
	Name         string      `db:"name"`
	Kind         AccountKind `db:"kind"`
	BudgetAmount int64       `db:"budget_amount"`
	IsActive     bool        `db:"is_active"`
	AuditFields
}

// KeywordRule is the DB row shape for a description-matching rule.
type KeywordRule struct {
	RuleID    string `db:"rule_id"`
	Keyword   string `db:"keyword"`
	AccountID string `db:"account_id"`
	Priority  int    `db:"priority"`
	AuditFields
}

// DefaultAccountMapping is the DB row shape for per-kindergarten
// fallback categorization.
type DefaultAccountMapping struct {
	KindergartenID  string `db:"kindergarten_id"`
	CreditAccountID string `db:"credit_account_id"`
	DebitAccountID  string `db:"debit_account_id"`
}

// PortalCredential is the DB row shape for an encrypted portal login.
type PortalCredential struct {
	KindergartenID  string `db:"kindergarten_id"`
	LoginID         string `db:"login_id"`
	EncryptedSecret string `db:"encrypted_secret"`
	AuditFields
}
