package dto

import (
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// ImportCandidate is one external transaction offered to the import
// pipeline. Shape mirrors domain.ExternalTransaction with binding rules.
type ImportCandidate struct {
	SourceID       string    `json:"sourceID" binding:"required"`
	SourceSystem   string    `json:"sourceSystem" binding:"required"`
	Date           time.Time `json:"date" binding:"required"`
	Amount         int64     `json:"amount" binding:"required,gt=0"`
	RawDescription string    `json:"rawDescription" binding:"required"`
	Direction      string    `json:"direction" binding:"required,oneof=CREDIT DEBIT"`
	Counterparty   string    `json:"counterparty"`
}

// ToDomain converts the candidate to its domain shape.
func (c ImportCandidate) ToDomain() domain.ExternalTransaction {
	return domain.ExternalTransaction{
		SourceID:       c.SourceID,
		SourceSystem:   c.SourceSystem,
		Date:           c.Date,
		Amount:         c.Amount,
		RawDescription: c.RawDescription,
		Direction:      domain.Direction(c.Direction),
		Counterparty:   c.Counterparty,
	}
}

// ImportBatchRequest imports a batch of candidates into one period.
type ImportBatchRequest struct {
	PeriodKey  string            `json:"periodKey" binding:"required"`
	Candidates []ImportCandidate `json:"candidates" binding:"required,min=1,dive"`
}

// CandidateFailure describes why one candidate was not imported. Failures
// never abort the rest of the batch.
type CandidateFailure struct {
	SourceSystem string `json:"sourceSystem"`
	SourceID     string `json:"sourceID"`
	Reason       string `json:"reason"`
}

// ImportSummary is the partial-success result of an import batch.
type ImportSummary struct {
	Accepted          []domain.LedgerEntry `json:"accepted"`
	AcceptedCount     int                  `json:"acceptedCount"`
	SkippedDuplicates int                  `json:"skippedDuplicates"`
	Failures          []CandidateFailure   `json:"failures"`
}

// CopyPreviousRequest clones selected entries of the previous period into
// the target period.
type CopyPreviousRequest struct {
	PeriodKey string   `json:"periodKey" binding:"required"`
	EntryIDs  []string `json:"entryIDs" binding:"required,min=1"`
}

// SyncFeedRequest pulls a registered transaction feed into a period.
type SyncFeedRequest struct {
	Feed      string    `json:"feed" binding:"required"`
	PeriodKey string    `json:"periodKey" binding:"required"`
	Since     time.Time `json:"since" binding:"required"`
}
