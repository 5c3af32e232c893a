// Package apperrors defines the sentinel errors shared across the ledger.
// Services return these unwrapped or wrapped with %w; handlers match them
// with errors.Is to pick an HTTP status code.
package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrFundNotFound indicates that a fund with the given name does not exist.
	ErrFundNotFound = errors.New("fund not found")

	// ErrPositionNotFound indicates that the fund holds no position in the
	// requested ticker.
	ErrPositionNotFound = errors.New("position not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateFund indicates that a fund with the same name already exists.
	ErrDuplicateFund = errors.New("fund already exists")

	// ErrInvalidArgument indicates a request argument that violates basic
	// constraints (negative cash, non-positive share count, empty name).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientCash indicates that a buy would drive the fund's cash
	// balance negative.
	ErrInsufficientCash = errors.New("insufficient cash")

	// ErrInsufficientShares indicates that a sell requests more shares than
	// the fund currently holds.
	ErrInsufficientShares = errors.New("insufficient shares for sale")
)

// Collaborator errors represent failures of external dependencies.
var (
	// ErrPriceUnavailable indicates that the price oracle could not produce a
	// quote for a ticker. Valuations fail fast on it rather than valuing the
	// position at zero or at a stale price.
	ErrPriceUnavailable = errors.New("price unavailable")
)
