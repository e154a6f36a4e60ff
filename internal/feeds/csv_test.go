package feeds

import (
	"strings"
	"testing"
	"time"

	"github.com/haneulsoft/kinderledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpreadsheet(t *testing.T) {
	input := strings.Join([]string{
		"date,deposit,withdrawal,description,counterparty",
		`2026-02-02,"850,000",,2월 원비 김민준,김민준 학부모`,
		"2026-02-05,,120000,한국전력 전기요금,한국전력",
	}, "\n")

	rows, err := ParseSpreadsheet(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, domain.SourceSystemSpreadsheet, rows[0].SourceSystem)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, int64(850000), rows[0].Amount)
	assert.Equal(t, domain.CreditDirection, rows[0].Direction)
	assert.Equal(t, "2월 원비 김민준", rows[0].RawDescription)
	assert.Equal(t, "김민준 학부모", rows[0].Counterparty)

	assert.Equal(t, int64(120000), rows[1].Amount)
	assert.Equal(t, domain.DebitDirection, rows[1].Direction)

	// Each row gets its own synthetic source ID.
	assert.NotEmpty(t, rows[0].SourceID)
	assert.NotEqual(t, rows[0].SourceID, rows[1].SourceID)
}

func TestParseSpreadsheetRejectsAmbiguousRows(t *testing.T) {
	header := "date,deposit,withdrawal,description,counterparty\n"

	_, err := ParseSpreadsheet(strings.NewReader(header + "2026-02-02,1000,2000,양쪽 다,상대방"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")

	_, err = ParseSpreadsheet(strings.NewReader(header + "2026-02-02,,,양쪽 다 없음,상대방"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")

	_, err = ParseSpreadsheet(strings.NewReader(header + "02/02/2026,1000,,날짜 형식 오류,상대방"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed date")
}
