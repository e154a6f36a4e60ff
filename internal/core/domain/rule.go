package domain

// KeywordRule maps a description substring to a target account code
// (자동분개 규칙). Rules are evaluated in ascending Priority; the first
// match wins. Overlap resolution beyond that is deliberately not
// implemented, so rule authors are expected to keep keywords disjoint.
type KeywordRule struct {
	RuleID    string `json:"ruleID"`
	Keyword   string `json:"keyword"` // case-sensitive substring matcher
	AccountID string `json:"accountID"`
	Priority  int    `json:"priority"`
	AuditFields
}

// DefaultAccountMapping resolves transactions no keyword rule matched:
// each bank account carries one default target per direction (e.g. every
// uncategorized credit on the tuition account books as 원비 수입).
type DefaultAccountMapping struct {
	KindergartenID  string `json:"kindergartenID"`
	CreditAccountID string `json:"creditAccountID"`
	DebitAccountID  string `json:"debitAccountID"`
}
