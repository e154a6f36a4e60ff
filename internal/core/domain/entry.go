package domain

import "time"

// TransmissionStatus tracks an entry's progress toward the external
// accounting portal. Entries settle to SENT or FAILED; FAILED entries stay
// eligible for caller-driven retry.
type TransmissionStatus string

const (
	Unsent  TransmissionStatus = "UNSENT"
	Pending TransmissionStatus = "PENDING"
	Sent    TransmissionStatus = "SENT"
	Failed  TransmissionStatus = "FAILED"
)

// LedgerEntry is one line of the cash journal, attributed to exactly one
// account code. Once its period closes, Locked is permanently true and no
// field but TransmissionStatus may change.
type LedgerEntry struct {
	EntryID            string             `json:"entryID"`
	KindergartenID     string             `json:"kindergartenID"`
	PeriodKey          PeriodKey          `json:"periodKey"`
	Date               time.Time          `json:"date"`
	Kind               AccountKind        `json:"kind"`
	Amount             int64              `json:"amount"` // always > 0, minor currency units
	AccountID          string             `json:"accountID"`
	Description        string             `json:"description"`
	CounterpartyName   string             `json:"counterpartyName,omitempty"`
	SourceRef          *SourceRef         `json:"sourceRef,omitempty"`
	SplitGroupID       string             `json:"splitGroupID,omitempty"`
	TransmissionStatus TransmissionStatus `json:"transmissionStatus"`
	Locked             bool               `json:"locked"`
	AuditFields
}

// IsJournaled reports whether the entry has a real account assigned.
func (e *LedgerEntry) IsJournaled() bool {
	return e.AccountID != "" && e.AccountID != UnassignedAccountID
}
