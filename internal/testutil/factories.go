package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/avdberg/fundledger/internal/model"
	"github.com/avdberg/fundledger/internal/repository"
	"github.com/shopspring/decimal"
)

// FundBuilder provides a fluent interface for creating test funds.
//
// Example usage:
//
//	// Simple creation with defaults
//	fund := testutil.NewFund().Build(t, db)
//
//	// Customized fund
//	fund := testutil.NewFund().
//	    WithName("Growth Fund").
//	    WithCash("2500.50").
//	    Build(t, db)
type FundBuilder struct {
	ID         string
	Name       string
	Cash       decimal.Decimal
	CreatedAt  time.Time
	LastUpdate time.Time
}

// NewFund creates a FundBuilder with sensible defaults.
func NewFund() *FundBuilder {
	now := time.Now().UTC()
	return &FundBuilder{
		ID:         MakeID(),
		Name:       MakeFundName("Test Fund"),
		Cash:       decimal.NewFromInt(100000),
		CreatedAt:  now,
		LastUpdate: now,
	}
}

// WithID sets a custom ID.
func (b *FundBuilder) WithID(id string) *FundBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *FundBuilder) WithName(name string) *FundBuilder {
	b.Name = name
	return b
}

// WithCash sets the cash balance from a decimal string.
func (b *FundBuilder) WithCash(cash string) *FundBuilder {
	b.Cash = decimal.RequireFromString(cash)
	return b
}

// Build creates the fund in the database and returns it.
func (b *FundBuilder) Build(t *testing.T, db *sql.DB) model.Fund {
	t.Helper()

	query := `
		INSERT INTO fund (id, name, cash, created_at, last_update)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Cash.String(),
		repository.FormatTime(b.CreatedAt), repository.FormatTime(b.LastUpdate))
	if err != nil {
		t.Fatalf("Failed to create test fund: %v", err)
	}

	return model.Fund{
		ID:         b.ID,
		Name:       b.Name,
		Cash:       b.Cash,
		CreatedAt:  b.CreatedAt,
		LastUpdate: b.LastUpdate,
	}
}

// PositionBuilder provides a fluent interface for creating test positions.
type PositionBuilder struct {
	ID                string
	FundID            string
	Ticker            string
	SharesHeld        decimal.Decimal
	LastPurchasePrice decimal.Decimal
	LastPurchaseDate  time.Time
}

// NewPosition creates a PositionBuilder for the given fund with defaults.
func NewPosition(fundID string) *PositionBuilder {
	return &PositionBuilder{
		ID:                MakeID(),
		FundID:            fundID,
		Ticker:            "AAPL",
		SharesHeld:        decimal.NewFromInt(10),
		LastPurchasePrice: decimal.RequireFromString("150.25"),
		LastPurchaseDate:  time.Now().UTC(),
	}
}

// WithTicker sets a custom ticker.
func (b *PositionBuilder) WithTicker(ticker string) *PositionBuilder {
	b.Ticker = ticker
	return b
}

// WithShares sets the share count from a decimal string.
func (b *PositionBuilder) WithShares(shares string) *PositionBuilder {
	b.SharesHeld = decimal.RequireFromString(shares)
	return b
}

// WithPrice sets the last purchase price from a decimal string.
func (b *PositionBuilder) WithPrice(price string) *PositionBuilder {
	b.LastPurchasePrice = decimal.RequireFromString(price)
	return b
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	query := `
		INSERT INTO position (id, fund_id, ticker, shares_held, last_purchase_price, last_purchase_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.FundID, b.Ticker, b.SharesHeld.String(),
		b.LastPurchasePrice.String(), repository.FormatTime(b.LastPurchaseDate))
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return model.Position{
		ID:                b.ID,
		FundID:            b.FundID,
		Ticker:            b.Ticker,
		SharesHeld:        b.SharesHeld,
		LastPurchasePrice: b.LastPurchasePrice,
		LastPurchaseDate:  b.LastPurchaseDate,
	}
}
