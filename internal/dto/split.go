package dto

// SplitAllocation is one leg of a multi-split journal: an amount of the
// source entry attributed to one account code.
type SplitAllocation struct {
	AccountID   string `json:"accountID" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"required"`
}

// SplitRequest divides one ledger entry across multiple accounts. The
// allocation amounts must sum exactly to the source entry's amount.
type SplitRequest struct {
	Allocations []SplitAllocation `json:"allocations" binding:"required,min=2,dive"`
}

// SplitMismatchDetail is the error body returned when allocations do not
// balance against the source amount.
type SplitMismatchDetail struct {
	SourceAmount int64 `json:"sourceAmount"`
	Allocated    int64 `json:"allocated"`
	Difference   int64 `json:"difference"`
}
