package repositories

import (
	"context"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// PeriodRepository defines persistence operations for reporting periods.
type PeriodRepository interface {
	// FindPeriod retrieves a period. Returns apperrors.ErrNotFound for a
	// month no entry has ever touched.
	FindPeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey) (*domain.Period, error)

	// EnsureOpen returns the period, creating it in the OPEN state if it
	// does not exist yet. Returns apperrors.ErrPeriodClosed if it exists
	// and is already closed.
	EnsureOpen(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, createdBy string) (*domain.Period, error)

	// ClosePeriod transitions the period OPEN -> CLOSED with a compare-and-set
	// on the state and locks every entry of the period in the same storage
	// transaction. Returns the number of entries locked. A concurrent loser
	// observes apperrors.ErrPeriodClosed; the period is never double-locked.
	ClosePeriod(ctx context.Context, kindergartenID string, periodKey domain.PeriodKey, closedBy string, closedAt time.Time) (int, error)

	// ListPeriods retrieves all known periods of a kindergarten, newest first.
	ListPeriods(ctx context.Context, kindergartenID string) ([]domain.Period, error)
}
