package dto

import "github.com/haneulsoft/kinderledger/internal/core/domain"

// ListEntriesParams controls period entry listing.
type ListEntriesParams struct {
	PeriodKey string  `form:"periodKey" binding:"required"`
	Limit     int     `form:"limit,default=50" binding:"omitempty,min=1,max=200"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse is a paginated page of ledger entries.
type ListEntriesResponse struct {
	Entries   []domain.LedgerEntry `json:"entries"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// RejournalRequest moves an unlocked entry onto another account code.
type RejournalRequest struct {
	AccountID string `json:"accountID" binding:"required"`
}
