package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one line of a fund composition: an open position enriched with
// its current market price and market value.
type Holding struct {
	Ticker            string          `json:"ticker"`
	SharesHeld        decimal.Decimal `json:"sharesHeld"`
	LastPurchasePrice decimal.Decimal `json:"lastPurchasePrice"`
	LastPurchaseDate  time.Time       `json:"lastPurchaseDate"`
	MarketPrice       decimal.Decimal `json:"marketPrice"`
	MarketValue       decimal.Decimal `json:"marketValue"`
}

// Composition is the read-only snapshot of a fund returned to API consumers:
// current cash, all open holdings at live prices, and the resulting total.
type Composition struct {
	FundName   string          `json:"fundName"`
	Cash       decimal.Decimal `json:"cash"`
	Holdings   []Holding       `json:"holdings"`
	TotalValue decimal.Decimal `json:"totalValue"`
}
