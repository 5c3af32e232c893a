// Package quote provides the price oracle used to value fund positions.
// The production implementation queries the Yahoo Finance chart API; tests
// substitute a stub.
package quote

import (
	"context"

	"github.com/shopspring/decimal"
)

// Client is the price oracle contract: given a ticker symbol, return its
// current market price. Any failure, including timeouts, is reported as
// apperrors.ErrPriceUnavailable so callers can fail fast instead of valuing
// a position at a stale or zero price.
type Client interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
