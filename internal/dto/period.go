package dto

import "time"

// ClosePreview reports what stands between a period and its close. The
// caller is expected to show UntransmittedCount as a warning; unassigned
// entries are a hard blocker.
type ClosePreview struct {
	PeriodKey          string `json:"periodKey"`
	EntryCount         int    `json:"entryCount"`
	UnassignedCount    int    `json:"unassignedCount"`
	UntransmittedCount int    `json:"untransmittedCount"`
	CanClose           bool   `json:"canClose"`
}

// CloseResult is the outcome of a successful period close.
type CloseResult struct {
	PeriodKey            string    `json:"periodKey"`
	LockedCount          int       `json:"lockedCount"`
	UntransmittedWarning int       `json:"untransmittedWarning"`
	ClosedAt             time.Time `json:"closedAt"`
}
