package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/avdberg/fundledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MockQuoteClient is a stub price oracle for testing. It serves fixed prices
// per ticker and can be configured to fail globally or per ticker.
type MockQuoteClient struct {
	mu sync.Mutex

	// Prices maps ticker -> quoted price.
	Prices map[string]decimal.Decimal
	// Err, when set, is returned for every ticker.
	Err error
	// TickerErrs maps ticker -> error for per-ticker failures.
	TickerErrs map[string]error
	// Calls counts GetPrice invocations.
	Calls int
}

// NewMockQuoteClient creates a mock oracle with a small default price table.
func NewMockQuoteClient() *MockQuoteClient {
	return &MockQuoteClient{
		Prices: map[string]decimal.Decimal{
			"AAPL": decimal.RequireFromString("150.25"),
			"TSLA": decimal.RequireFromString("242.80"),
			"MSFT": decimal.RequireFromString("410.10"),
		},
		TickerErrs: map[string]error{},
	}
}

// GetPrice returns the configured price for the ticker, or
// apperrors.ErrPriceUnavailable when the ticker is unknown or a failure is
// configured.
func (m *MockQuoteClient) GetPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++

	if m.Err != nil {
		return decimal.Decimal{}, m.Err
	}
	if err, ok := m.TickerErrs[symbol]; ok {
		return decimal.Decimal{}, err
	}

	price, ok := m.Prices[symbol]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", apperrors.ErrPriceUnavailable, symbol)
	}

	return price, nil
}

// WithPrice sets the quoted price for a ticker.
func (m *MockQuoteClient) WithPrice(symbol, price string) *MockQuoteClient {
	m.Prices[symbol] = decimal.RequireFromString(price)
	return m
}

// WithError configures the mock to fail for every ticker.
func (m *MockQuoteClient) WithError(err error) *MockQuoteClient {
	m.Err = err
	return m
}

// WithTickerError configures the mock to fail for one ticker only.
func (m *MockQuoteClient) WithTickerError(symbol string, err error) *MockQuoteClient {
	m.TickerErrs[symbol] = err
	return m
}
