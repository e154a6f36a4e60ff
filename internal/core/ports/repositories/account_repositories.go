package repositories

import (
	"context"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountCodeByID retrieves a single account code.
	FindAccountCodeByID(ctx context.Context, accountID string) (*domain.AccountCode, error)

	// FindAccountCodesByIDs retrieves account codes keyed by ID. Missing IDs
	// are absent from the map; the caller decides whether that is an error.
	FindAccountCodesByIDs(ctx context.Context, accountIDs []string) (map[string]domain.AccountCode, error)

	// ListAccountCodes retrieves the full chart of accounts in code order.
	ListAccountCodes(ctx context.Context) ([]domain.AccountCode, error)
}

// AccountWriter defines write operations for the chart of accounts.
type AccountWriter interface {
	// SaveAccountCode persists a new account code.
	SaveAccountCode(ctx context.Context, account domain.AccountCode) error

	// DeactivateAccountCode marks an account code inactive. Account codes
	// are never deleted while ledger entries reference them.
	DeactivateAccountCode(ctx context.Context, accountID, updatedBy string) error
}

// AccountRepositoryFacade combines account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
