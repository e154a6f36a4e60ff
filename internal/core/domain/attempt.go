package domain

import "time"

// AttemptOutcome is the terminal result of one portal submission attempt.
type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "SUCCESS"
	AttemptFailure AttemptOutcome = "FAILURE"
)

// TransmissionAttempt is one row of the append-only transmission audit
// trail. An entry may accumulate many attempts across retries; its current
// status is carried on the entry itself.
type TransmissionAttempt struct {
	AttemptID   string         `json:"attemptID"`
	EntryID     string         `json:"entryID"`
	AttemptedAt time.Time      `json:"attemptedAt"`
	Outcome     AttemptOutcome `json:"outcome"`
	ErrorDetail string         `json:"errorDetail,omitempty"`
}
