package domain

import "time"

// Direction indicates which side of the bank statement a transaction sits
// on as seen from the kindergarten's account.
type Direction string

const (
	CreditDirection Direction = "CREDIT" // money in
	DebitDirection  Direction = "DEBIT"  // money out
)

// Kind returns the ledger classification this direction maps to.
func (d Direction) Kind() AccountKind {
	if d == CreditDirection {
		return Income
	}
	return Expense
}

// ExternalTransaction is one row fetched from a bank feed, CMS feed or
// spreadsheet batch. Immutable once fetched; (SourceSystem, SourceID) is
// the natural dedup key for same-period imports.
type ExternalTransaction struct {
	SourceID       string    `json:"sourceID"`
	SourceSystem   string    `json:"sourceSystem"`
	Date           time.Time `json:"date"`
	Amount         int64     `json:"amount"` // positive, minor currency units (KRW)
	RawDescription string    `json:"rawDescription"`
	Direction      Direction `json:"direction"`
	Counterparty   string    `json:"counterparty,omitempty"`
}

// SourceRef links a ledger entry back to the external transaction it was
// imported from.
type SourceRef struct {
	SourceSystem string `json:"sourceSystem"`
	SourceID     string `json:"sourceID"`
}

// Well-known source systems. Spreadsheet rows get synthetic source IDs, so
// re-importing a regenerated file is not deduped across files.
const (
	SourceSystemBank        = "BANK"
	SourceSystemCMS         = "CMS"
	SourceSystemSpreadsheet = "SPREADSHEET"
)
