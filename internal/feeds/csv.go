package feeds

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
)

// spreadsheetRow maps one line of an uploaded bank-style CSV export.
// Exactly one of Deposit/Withdrawal is set per row.
type spreadsheetRow struct {
	Date         string `csv:"date"`
	Deposit      string `csv:"deposit"`
	Withdrawal   string `csv:"withdrawal"`
	Description  string `csv:"description"`
	Counterparty string `csv:"counterparty"`
}

// ParseSpreadsheet reads an uploaded CSV file into external transactions.
// Rows get fresh UUID source IDs: an uploaded file has no stable identity,
// so re-uploading a regenerated export is deliberately not deduped.
func ParseSpreadsheet(r io.Reader) ([]domain.ExternalTransaction, error) {
	var rows []spreadsheetRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}

	out := make([]domain.ExternalTransaction, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row.Date))
		if err != nil {
			return nil, fmt.Errorf("CSV row %d has malformed date %q: %w", i+1, row.Date, err)
		}

		deposit, err := parseOptionalAmount(row.Deposit)
		if err != nil {
			return nil, fmt.Errorf("CSV row %d has malformed deposit %q: %w", i+1, row.Deposit, err)
		}
		withdrawal, err := parseOptionalAmount(row.Withdrawal)
		if err != nil {
			return nil, fmt.Errorf("CSV row %d has malformed withdrawal %q: %w", i+1, row.Withdrawal, err)
		}
		if (deposit == 0) == (withdrawal == 0) {
			return nil, fmt.Errorf("CSV row %d must have exactly one of deposit or withdrawal", i+1)
		}

		amount := deposit
		direction := domain.CreditDirection
		if withdrawal != 0 {
			amount = withdrawal
			direction = domain.DebitDirection
		}

		out = append(out, domain.ExternalTransaction{
			SourceID:       uuid.NewString(),
			SourceSystem:   domain.SourceSystemSpreadsheet,
			Date:           date,
			Amount:         amount,
			RawDescription: strings.TrimSpace(row.Description),
			Direction:      direction,
			Counterparty:   strings.TrimSpace(row.Counterparty),
		})
	}
	return out, nil
}

func parseOptionalAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
