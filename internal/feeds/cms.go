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

// CMSFeed fetches tuition collections from the CMS auto-debit service.
// Collections are always money in; the feed never produces debits.
type CMSFeed struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ gateways.TransactionFeed = (*CMSFeed)(nil)

func NewCMSFeed(baseURL, apiKey string, timeout time.Duration) *CMSFeed {
	return &CMSFeed{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (f *CMSFeed) Name() string {
	return domain.SourceSystemCMS
}

type cmsCollectionRow struct {
	CollectionID string `json:"collectionId"`
	CollectedOn  string `json:"collectedOn"` // YYYY-MM-DD
	Amount       int64  `json:"amount"`
	PayerName    string `json:"payerName"`
	Memo         string `json:"memo"`
}

func (f *CMSFeed) Fetch(ctx context.Context, kindergartenID string, since time.Time) ([]domain.ExternalTransaction, error) {
	endpoint := fmt.Sprintf("%s/collections?org=%s&from=%s",
		f.baseURL, url.QueryEscape(kindergartenID), since.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build CMS feed request: %w", err)
	}
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CMS feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CMS feed returned status %d", resp.StatusCode)
	}

	var rows []cmsCollectionRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode CMS feed response: %w", err)
	}

	out := make([]domain.ExternalTransaction, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.CollectedOn)
		if err != nil {
			return nil, fmt.Errorf("CMS feed row %s has malformed date %q: %w", row.CollectionID, row.CollectedOn, err)
		}
		description := row.Memo
		if description == "" {
			description = fmt.Sprintf("CMS 수납 %s", row.PayerName)
		}
		out = append(out, domain.ExternalTransaction{
			SourceID:       row.CollectionID,
			SourceSystem:   domain.SourceSystemCMS,
			Date:           date,
			Amount:         row.Amount,
			RawDescription: description,
			Direction:      domain.CreditDirection,
			Counterparty:   row.PayerName,
		})
	}
	return out, nil
}
