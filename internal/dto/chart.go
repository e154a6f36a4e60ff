package dto

// CreateAccountCodeRequest adds one account code to the chart of accounts.
type CreateAccountCodeRequest struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Kind         string `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
	BudgetAmount int64  `json:"budgetAmount" binding:"omitempty,min=0"`
}

// CreateKeywordRuleRequest adds one auto-journaling keyword rule. Priority
// fixes evaluation order; lower runs first.
type CreateKeywordRuleRequest struct {
	Keyword   string `json:"keyword" binding:"required"`
	AccountID string `json:"accountID" binding:"required"`
	Priority  int    `json:"priority" binding:"omitempty,min=0"`
}

// SetDefaultMappingRequest configures the kindergarten's fallback accounts
// for transactions no keyword rule matches.
type SetDefaultMappingRequest struct {
	CreditAccountID string `json:"creditAccountID" binding:"required"`
	DebitAccountID  string `json:"debitAccountID" binding:"required"`
}

// UpsertCredentialRequest stores the kindergarten's portal login. The
// secret is encrypted before persistence and is never readable back.
type UpsertCredentialRequest struct {
	LoginID string `json:"loginID" binding:"required"`
	Secret  string `json:"secret" binding:"required"`
}
