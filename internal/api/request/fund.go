package request

import "github.com/shopspring/decimal"

// CreateFundRequest is the payload for POST /api/fund.
type CreateFundRequest struct {
	Name        string          `json:"name"`
	InitialCash decimal.Decimal `json:"initialCash"`
}
