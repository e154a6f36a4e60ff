package dto

import "github.com/haneulsoft/kinderledger/internal/core/domain"

// TransmitRequest submits a set of period entries to the external portal.
// Entries are processed strictly in the order given. MaxRetries > 0 makes
// the handler re-drive the FAILED subset with backoff; the engine itself
// performs a single pass.
type TransmitRequest struct {
	PeriodKey  string   `json:"periodKey" binding:"required"`
	EntryIDs   []string `json:"entryIDs" binding:"required,min=1"`
	MaxRetries int      `json:"maxRetries" binding:"omitempty,min=0,max=5"`
}

// EntryFailure describes one entry's transmission failure.
type EntryFailure struct {
	EntryID string `json:"entryID"`
	Reason  string `json:"reason"`
}

// TransmitSummary is the per-batch transmission outcome. Partial failure is
// the expected case, so this is a result body, never an error.
type TransmitSummary struct {
	SuccessCount       int            `json:"successCount"`
	SkippedAlreadySent int            `json:"skippedAlreadySent"`
	Failures           []EntryFailure `json:"failures"`
}

// Merge folds a retry pass into the running summary. Skips are not
// accumulated: an entry sent in a previous pass and skipped by the retry
// would otherwise be counted twice.
func (s *TransmitSummary) Merge(next TransmitSummary) {
	s.SuccessCount += next.SuccessCount
	s.Failures = next.Failures
}

// FailedEntryIDs returns the IDs eligible for a retry pass.
func (s *TransmitSummary) FailedEntryIDs() []string {
	ids := make([]string, 0, len(s.Failures))
	for _, f := range s.Failures {
		ids = append(ids, f.EntryID)
	}
	return ids
}

// AttemptResponse exposes one audit-trail row.
type AttemptResponse struct {
	AttemptID   string `json:"attemptID"`
	EntryID     string `json:"entryID"`
	AttemptedAt string `json:"attemptedAt"`
	Outcome     string `json:"outcome"`
	ErrorDetail string `json:"errorDetail,omitempty"`
}

// FromAttempt maps a domain attempt to its response shape.
func FromAttempt(a domain.TransmissionAttempt) AttemptResponse {
	return AttemptResponse{
		AttemptID:   a.AttemptID,
		EntryID:     a.EntryID,
		AttemptedAt: a.AttemptedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Outcome:     string(a.Outcome),
		ErrorDetail: a.ErrorDetail,
	}
}
