package validation

import (
	"strings"

	"github.com/avdberg/fundledger/internal/api/request"
)

// maxFundNameLength matches the fund.name column width.
const maxFundNameLength = 100

// ValidateCreateFund validates a fund creation request.
//
// Required fields:
//   - name: non-empty, at most 100 characters
//   - initialCash: must not be negative
func ValidateCreateFund(req request.CreateFundRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > maxFundNameLength {
		errors["name"] = "name is too long"
	}

	if req.InitialCash.IsNegative() {
		errors["initialCash"] = "initialCash must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
