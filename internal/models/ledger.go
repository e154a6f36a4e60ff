package models

import "time"

// TransmissionStatus mirrors the entry status enum stored in the DB.
type TransmissionStatus string

// LedgerEntry is the DB row shape for a cash journal line.
// SourceSystem/SourceTransactionID are nullable; both are set or neither.
type LedgerEntry struct {
	EntryID             string             `db:"entry_id"`
	KindergartenID      string             `db:"kindergarten_id"`
	PeriodKey           string             `db:"period_key"`
	Date                time.Time          `db:"entry_date"`
	Kind                AccountKind        `db:"kind"`
	Description         string             `db:"description"`
	CounterpartyName    string             `db:"counterparty_name"` // Nullable
	Amount              int64              `db:"amount"`
	AccountID           string             `db:"account_id"`
	SplitGroupID        string             `db:"split_group_id"` // Nullable
	SourceSystem        string             `db:"source_system"`  // Nullable
	SourceTransactionID string             `db:"source_transaction_id"`
	TransmissionStatus  TransmissionStatus `db:"transmission_status"`
	Locked              bool               `db:"locked"`
	AuditFields
}

// Period is the DB row shape for one month's closing state.
type Period struct {
	KindergartenID string     `db:"kindergarten_id"`
	PeriodKey      string     `db:"period_key"`
	State          string     `db:"state"`
	ClosedAt       *time.Time `db:"closed_at"` // Nullable
	ClosedBy       string     `db:"closed_by"` // Nullable
	AuditFields
}

// TransmissionAttempt is the DB row shape for the append-only audit trail.
type TransmissionAttempt struct {
	AttemptID   string    `db:"attempt_id"`
	EntryID     string    `db:"entry_id"`
	AttemptedAt time.Time `db:"attempted_at"`
	Outcome     string    `db:"outcome"`
	ErrorDetail string    `db:"error_detail"` // Nullable
}
