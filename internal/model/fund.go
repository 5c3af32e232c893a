package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fund represents a named account holding cash and equity positions.
// The name is unique and immutable once created; cash is only mutated by
// buy and sell operations.
type Fund struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Cash       decimal.Decimal `json:"cash"`
	CreatedAt  time.Time       `json:"createdAt"`
	LastUpdate time.Time       `json:"lastUpdate"`
}

// Position represents a fund's current holding in one ticker.
// There is exactly one Position row per (fund, ticker) pair; a repeat buy
// updates the existing row. Rows are retained with zero shares after a full
// sell and filtered out of compositions and valuations.
type Position struct {
	ID                string          `json:"id"`
	FundID            string          `json:"fundId"`
	Ticker            string          `json:"ticker"`
	SharesHeld        decimal.Decimal `json:"sharesHeld"`
	LastPurchasePrice decimal.Decimal `json:"lastPurchasePrice"`
	LastPurchaseDate  time.Time       `json:"lastPurchaseDate"`
}
