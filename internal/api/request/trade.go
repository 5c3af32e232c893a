package request

import "github.com/shopspring/decimal"

// TradeRequest is the payload for POST /api/fund/{name}/buy and /sell.
// The execution price always comes from the price oracle, never the client.
type TradeRequest struct {
	Ticker string          `json:"ticker"`
	Shares decimal.Decimal `json:"shares"`
}
