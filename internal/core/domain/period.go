package domain

import "time"

// PeriodState is the closing state of one month's journal.
type PeriodState string

const (
	PeriodOpen   PeriodState = "OPEN"
	PeriodClosed PeriodState = "CLOSED"
)

// Period represents one month of the cash journal for one kindergarten.
// OPEN -> CLOSED is the only transition and it is irreversible; the
// real-world audit rule is that a closed month is never reopened.
type Period struct {
	KindergartenID string      `json:"kindergartenID"`
	PeriodKey      PeriodKey   `json:"periodKey"`
	State          PeriodState `json:"state"`
	ClosedAt       *time.Time  `json:"closedAt,omitempty"`
	ClosedBy       string      `json:"closedBy,omitempty"`
	AuditFields
}
