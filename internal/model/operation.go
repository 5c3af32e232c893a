package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation kinds recorded in the audit log.
const (
	OperationCreate = "CREATE"
	OperationBuy    = "BUY"
	OperationSell   = "SELL"
)

// Operation is an immutable append-only log entry for a state-changing
// action on a fund. Ticker, shares, and price are nil for CREATE entries.
type Operation struct {
	ID     string           `json:"id"`
	FundID string           `json:"fundId"`
	Ticker *string          `json:"ticker"`
	Type   string           `json:"type"`
	Shares *decimal.Decimal `json:"shares"`
	Price  *decimal.Decimal `json:"price"`
	Date   time.Time        `json:"date"`
}
