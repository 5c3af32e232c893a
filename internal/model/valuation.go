package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valuation is an immutable snapshot of a fund's total value (cash plus the
// market value of all open positions) at a point in time. One record is
// appended per fund per valuation run, even when the total is unchanged.
type Valuation struct {
	ID         string          `json:"id"`
	FundID     string          `json:"fundId"`
	Date       time.Time       `json:"date"`
	TotalValue decimal.Decimal `json:"totalValue"`
}
