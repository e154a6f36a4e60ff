package gateways

import (
	"context"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// TransactionFeed supplies external transactions from one source system
// (bank statement lookup, CMS collections, spreadsheet batch). Fetch never
// mutates anything; dedup against already-imported rows happens in the
// import pipeline.
type TransactionFeed interface {
	// Name identifies the feed, e.g. "BANK" or "CMS".
	Name() string

	// Fetch retrieves the kindergarten's transactions on or after since.
	Fetch(ctx context.Context, kindergartenID string, since time.Time) ([]domain.ExternalTransaction, error)
}
