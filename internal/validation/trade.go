package validation

import (
	"strings"

	"github.com/avdberg/fundledger/internal/api/request"
)

// ValidateTrade validates a buy or sell request.
//
// Required fields:
//   - ticker: non-empty
//   - shares: must be positive
func ValidateTrade(req request.TradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}

	if !req.Shares.IsPositive() {
		errors["shares"] = "shares must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
