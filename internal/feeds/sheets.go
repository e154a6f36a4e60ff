package feeds

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
	"github.com/haneulsoft/kinderledger/internal/core/ports/gateways"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsFeed reads transactions maintained by hand in a Google Sheets
// workbook, one kindergarten per configured spreadsheet. Source IDs are
// derived from the spreadsheet and row position, so re-syncing the same
// sheet dedups cleanly while a copied workbook does not.
type SheetsFeed struct {
	service      *sheets.Service
	spreadsheets map[string]string // kindergartenID -> spreadsheet ID
	readRange    string
}

var _ gateways.TransactionFeed = (*SheetsFeed)(nil)

// NewSheetsFeed authenticates with a service account credentials JSON and
// maps kindergartens to their spreadsheet IDs.
func NewSheetsFeed(ctx context.Context, credentialsJSON []byte, spreadsheets map[string]string, readRange string) (*SheetsFeed, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheets credentials: %w", err)
	}
	service, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if readRange == "" {
		readRange = "A2:E"
	}
	return &SheetsFeed{
		service:      service,
		spreadsheets: spreadsheets,
		readRange:    readRange,
	}, nil
}

func (f *SheetsFeed) Name() string {
	return domain.SourceSystemSpreadsheet
}

func (f *SheetsFeed) Fetch(ctx context.Context, kindergartenID string, since time.Time) ([]domain.ExternalTransaction, error) {
	spreadsheetID, found := f.spreadsheets[kindergartenID]
	if !found {
		return nil, fmt.Errorf("no spreadsheet configured for kindergarten %s", kindergartenID)
	}

	resp, err := f.service.Spreadsheets.Values.Get(spreadsheetID, f.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet %s: %w", spreadsheetID, err)
	}

	var out []domain.ExternalTransaction
	for i, row := range resp.Values {
		// Columns: date, amount, direction(입금/출금), description, counterparty.
		if len(row) < 4 {
			continue
		}
		date, err := time.Parse("2006-01-02", cellString(row[0]))
		if err != nil {
			return nil, fmt.Errorf("spreadsheet row %d has malformed date %q: %w", i+2, cellString(row[0]), err)
		}
		if date.Before(since) {
			continue
		}
		amount, err := parseCellAmount(cellString(row[1]))
		if err != nil {
			return nil, fmt.Errorf("spreadsheet row %d has malformed amount %q: %w", i+2, cellString(row[1]), err)
		}
		direction := domain.DebitDirection
		if cellString(row[2]) == "입금" {
			direction = domain.CreditDirection
		}
		counterparty := ""
		if len(row) > 4 {
			counterparty = cellString(row[4])
		}
		out = append(out, domain.ExternalTransaction{
			SourceID:       fmt.Sprintf("%s:%d", spreadsheetID, i+2),
			SourceSystem:   domain.SourceSystemSpreadsheet,
			Date:           date,
			Amount:         amount,
			RawDescription: cellString(row[3]),
			Direction:      direction,
			Counterparty:   counterparty,
		})
	}
	return out, nil
}

func cellString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// parseCellAmount accepts hand-entered amounts like "850,000".
func parseCellAmount(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}
