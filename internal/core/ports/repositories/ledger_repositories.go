package repositories

import (
	"context"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// LedgerReader defines read operations for ledger entries.
type LedgerReader interface {
	// FindEntryByID retrieves a single ledger entry scoped to a kindergarten.
	FindEntryByID(ctx context.Context, kindergartenID, entryID string) (*domain.LedgerEntry, error)

	// FindEntriesByIDs retrieves the requested entries keyed by entry ID.
	// Missing IDs are simply absent from the map.
	FindEntriesByIDs(ctx context.Context, kindergartenID string, entryIDs []string) (map[string]domain.LedgerEntry, error)

	// ListEntriesByPeriod retrieves a paginated list of a period's entries
	// in date order using token-based pagination.
	ListEntriesByPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// ExistsSourceRef reports whether any entry of the kindergarten already
	// references the given external transaction. This is the import dedup check.
	ExistsSourceRef(ctx context.Context, kindergartenID string, ref domain.SourceRef) (bool, error)

	// CountUnassigned counts entries of the period still on the unassigned
	// account. A period cannot close while this is non-zero.
	CountUnassigned(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (int, error)

	// CountByTransmissionStatus breaks the period's entries down by
	// transmission status.
	CountByTransmissionStatus(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (map[domain.TransmissionStatus]int, error)

	// SumAmountsByAccount totals the period's entry amounts per account ID.
	SumAmountsByAccount(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (map[string]int64, error)
}

// LedgerWriter defines write operations for ledger entries. Implementations
// must reject any mutation other than a transmission status update once an
// entry is locked.
type LedgerWriter interface {
	// SaveEntry persists a single new ledger entry.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error

	// SaveEntries persists a group of entries atomically: either every entry
	// is created or none is. Used for split groups.
	SaveEntries(ctx context.Context, entries []domain.LedgerEntry) error

	// ReplaceEntryWithSplits atomically deletes the source entry and inserts
	// its split entries. Fails with apperrors.ErrPeriodLocked if the source
	// entry is locked.
	ReplaceEntryWithSplits(ctx context.Context, kindergartenID, entryID string, splits []domain.LedgerEntry) error

	// UpdateEntryAccount re-journals an unlocked entry onto another account.
	UpdateEntryAccount(ctx context.Context, kindergartenID, entryID, accountID, updatedBy string, updatedAt time.Time) error

	// UpdateTransmissionStatus sets the transmission status of an entry.
	// This is the single mutation allowed on locked entries.
	UpdateTransmissionStatus(ctx context.Context, entryID string, status domain.TransmissionStatus, updatedBy string, updatedAt time.Time) error

	// DeleteEntry removes an unlocked entry from the journal.
	DeleteEntry(ctx context.Context, kindergartenID, entryID string) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
