package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// timeLayout is the storage format for all timestamps. Fixed-width fractional
// seconds keep lexicographic order equal to chronological order in SQLite.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders a timestamp in the canonical storage format (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime parses a timestamp in the canonical storage format, falling back
// to RFC3339 for rows written by external tooling.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(timeLayout, str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// ParseDecimal parses a stored decimal string. Cash, prices, shares, and
// valuation totals are stored as canonical decimal text, never as floats.
func ParseDecimal(str string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse decimal: %w", err)
	}
	return d, nil
}
