package domain

import (
	"fmt"
	"time"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// PeriodKey identifies one month of the cash journal, formatted "YYYY-MM".
type PeriodKey string

// ParsePeriodKey validates and normalizes a "YYYY-MM" period key.
func ParsePeriodKey(s string) (PeriodKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("invalid period key %q: %w", s, err)
	}
	return PeriodKey(t.Format("2006-01")), nil
}

// PeriodKeyFor returns the period key of the month containing t.
func PeriodKeyFor(t time.Time) PeriodKey {
	return PeriodKey(t.Format("2006-01"))
}

// Prev returns the key of the preceding month.
func (k PeriodKey) Prev() PeriodKey {
	t, _ := time.Parse("2006-01", string(k))
	return PeriodKey(t.AddDate(0, -1, 0).Format("2006-01"))
}

// Next returns the key of the following month.
func (k PeriodKey) Next() PeriodKey {
	t, _ := time.Parse("2006-01", string(k))
	return PeriodKey(t.AddDate(0, 1, 0).Format("2006-01"))
}

// Contains reports whether t falls inside this period's month.
func (k PeriodKey) Contains(t time.Time) bool {
	return PeriodKeyFor(t) == k
}

// ShiftInto moves a date from its own month into this period, preserving
// the day of month and clamping to the last day when the target month is
// shorter (Jan 31 copied into February lands on Feb 28/29).
func (k PeriodKey) ShiftInto(date time.Time) time.Time {
	first, _ := time.Parse("2006-01", string(k))
	lastDay := first.AddDate(0, 1, -1).Day()
	day := date.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day,
		date.Hour(), date.Minute(), date.Second(), 0, date.Location())
}

func (k PeriodKey) String() string {
	return string(k)
}
