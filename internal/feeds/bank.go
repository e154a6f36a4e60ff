// Package feeds implements the external transaction sources the import
// pipeline pulls from: the bank statement API, the CMS collection service,
// Google Sheets workbooks and uploaded spreadsheet files.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
	"github.com/haneulsoft/kinderledger/internal/core/ports/gateways"
)

// BankFeed fetches settled transactions from the bank's statement API.
type BankFeed struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ gateways.TransactionFeed = (*BankFeed)(nil)

func NewBankFeed(baseURL, apiKey string, timeout time.Duration) *BankFeed {
	return &BankFeed{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (f *BankFeed) Name() string {
	return domain.SourceSystemBank
}

type bankTransactionRow struct {
	TransactionID string `json:"transactionId"`
	Date          string `json:"date"` // YYYY-MM-DD
	Amount        int64  `json:"amount"`
	Type          string `json:"type"` // "IN" or "OUT"
	Description   string `json:"description"`
	Counterparty  string `json:"counterparty"`
}

func (f *BankFeed) Fetch(ctx context.Context, kindergartenID string, since time.Time) ([]domain.ExternalTransaction, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/transactions?since=%s",
		f.baseURL, url.PathEscape(kindergartenID), since.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bank feed request: %w", err)
	}
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bank feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bank feed returned status %d", resp.StatusCode)
	}

	var rows []bankTransactionRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode bank feed response: %w", err)
	}

	out := make([]domain.ExternalTransaction, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, fmt.Errorf("bank feed row %s has malformed date %q: %w", row.TransactionID, row.Date, err)
		}
		direction := domain.DebitDirection
		if row.Type == "IN" {
			direction = domain.CreditDirection
		}
		out = append(out, domain.ExternalTransaction{
			SourceID:       row.TransactionID,
			SourceSystem:   domain.SourceSystemBank,
			Date:           date,
			Amount:         row.Amount,
			RawDescription: row.Description,
			Direction:      direction,
			Counterparty:   row.Counterparty,
		})
	}
	return out, nil
}
