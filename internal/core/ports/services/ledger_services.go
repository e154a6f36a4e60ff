package services

import (
	"context"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
	"github.com/haneulsoft/kinderledger/internal/dto"
)

// CategorizerSvc assigns account codes to transaction descriptions. Pure
// lookup, no side effects; returns domain.UnassignedAccountID when neither
// a keyword rule nor the kindergarten's default mapping resolves.
type CategorizerSvc interface {
	Categorize(ctx context.Context, kindergartenID, description string, direction domain.Direction) (string, error)
}

// ImportSvcFacade is the import pipeline: feed batches, spreadsheet
// batches and prior-period copies all funnel through here.
type ImportSvcFacade interface {
	// ImportBatch converts candidates 1:1 into UNSENT ledger entries,
	// skipping duplicates by (sourceSystem, sourceID). Partial success:
	// one bad candidate never blocks the rest.
	ImportBatch(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, candidates []domain.ExternalTransaction, userID string) (*dto.ImportSummary, error)

	// CopyFromPreviousPeriod clones entries of the preceding period into
	// periodKey with fresh IDs, shifted dates and reset statuses. Clones
	// carry no source ref: cross-period duplication is intended here.
	CopyFromPreviousPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, entryIDs []string, userID string) (*dto.ImportSummary, error)

	// SyncFeed fetches a registered transaction feed and imports the result.
	SyncFeed(ctx context.Context, kindergartenID, feedName string, periodKey domain.PeriodKey, since time.Time, userID string) (*dto.ImportSummary, error)
}

// SplitSvcFacade is the multi-split journal balancer.
type SplitSvcFacade interface {
	// SplitEntry atomically replaces one unlocked entry with entries per
	// allocation, all sharing a fresh split group ID. Allocations must sum
	// exactly to the source amount or the call fails with
	// *apperrors.SplitMismatchError and writes nothing.
	SplitEntry(ctx context.Context, kindergartenID, entryID string, req dto.SplitRequest, userID string) ([]domain.LedgerEntry, error)
}

// LedgerSvcFacade covers direct journal reads and the small set of
// permitted entry mutations outside import/split.
type LedgerSvcFacade interface {
	GetEntry(ctx context.Context, kindergartenID, entryID string) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, kindergartenID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
	RejournalEntry(ctx context.Context, kindergartenID, entryID, accountID, userID string) error
	DeleteEntry(ctx context.Context, kindergartenID, entryID string) error
}

// PeriodSvcFacade is the period close state machine.
type PeriodSvcFacade interface {
	// PreviewClose reports blockers and warnings without committing.
	PreviewClose(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*dto.ClosePreview, error)

	// Close transitions OPEN -> CLOSED and locks every entry. Closing an
	// already-closed period fails with apperrors.ErrPeriodClosed and has
	// no destructive effect.
	Close(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, closedBy string) (*dto.CloseResult, error)

	GetPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*domain.Period, error)
	ListPeriods(ctx context.Context, kindergartenID string) ([]domain.Period, error)
}

// TransmitSvcFacade is the transmission agent.
type TransmitSvcFacade interface {
	// Transmit drives the portal workflow over the entries in submitted
	// order. Idempotent: entries already SENT are skipped without a new
	// attempt, so re-invoking over the same set is always safe.
	Transmit(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, entryIDs []string, userID string) (*dto.TransmitSummary, error)

	// ListAttempts returns an entry's transmission audit trail.
	ListAttempts(ctx context.Context, kindergartenID, entryID string) ([]domain.TransmissionAttempt, error)
}
