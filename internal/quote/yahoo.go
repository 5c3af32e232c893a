package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avdberg/fundledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches current market prices from the Yahoo Finance v8 chart
// API. A five-day daily chart is requested and the most recent close is used
// as the current price, which also covers tickers whose market is closed.
type YahooClient struct {
	httpClient *http.Client

	// BaseURL is overridable for tests; defaults to the public API host.
	BaseURL string
}

// NewYahooClient creates a Yahoo Finance client. The timeout bounds the whole
// request so a hanging oracle surfaces as ErrPriceUnavailable rather than
// blocking a ledger operation indefinitely.
func NewYahooClient(timeout time.Duration) *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: timeout},
		BaseURL:    defaultBaseURL,
	}
}

// GetPrice returns the latest available close price for the symbol.
func (c *YahooClient) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.BaseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", apperrors.ErrPriceUnavailable, symbol, err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", apperrors.ErrPriceUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", apperrors.ErrPriceUnavailable, symbol, err)
	}

	var response chartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", apperrors.ErrPriceUnavailable, symbol, err)
	}

	if response.Chart.Error != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: yahoo error: %s", apperrors.ErrPriceUnavailable, symbol, *response.Chart.Error)
	}

	price, err := latestClose(response)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", apperrors.ErrPriceUnavailable, symbol, err)
	}

	return price, nil
}

// latestClose extracts the most recent non-nil close price from a chart
// response. Trailing nil closes occur on days where the market has not
// closed yet.
func latestClose(response chartResponse) (decimal.Decimal, error) {
	if len(response.Chart.Result) == 0 {
		return decimal.Decimal{}, fmt.Errorf("no results returned")
	}

	result := response.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return decimal.Decimal{}, fmt.Errorf("no close prices returned")
	}

	closes := result.Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return decimal.NewFromFloat(*closes[i]), nil
		}
	}

	return decimal.Decimal{}, fmt.Errorf("no close prices returned")
}
