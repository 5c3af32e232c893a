package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avdberg/fundledger/internal/apperrors"
	"github.com/avdberg/fundledger/internal/model"
	"github.com/shopspring/decimal"
)

// PositionRepository provides data access methods for the position table.
// The table carries one row per (fund, ticker) pair; rows are never deleted,
// a fully sold position keeps a zero shares_held.
type PositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PositionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert stores a new position row.
func (r *PositionRepository) Insert(ctx context.Context, position *model.Position) error {
	query := `
		INSERT INTO position (id, fund_id, ticker, shares_held, last_purchase_price, last_purchase_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		position.ID,
		position.FundID,
		position.Ticker,
		position.SharesHeld.String(),
		position.LastPurchasePrice.String(),
		FormatTime(position.LastPurchaseDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}

	return nil
}

// GetByFundAndTicker retrieves the single position a fund holds in a ticker.
// Returns apperrors.ErrPositionNotFound if no row exists.
func (r *PositionRepository) GetByFundAndTicker(ctx context.Context, fundID, ticker string) (model.Position, error) {
	query := `
		SELECT id, fund_id, ticker, shares_held, last_purchase_price, last_purchase_date
		FROM position
		WHERE fund_id = ? AND ticker = ?
	`

	row := r.getQuerier().QueryRowContext(ctx, query, fundID, ticker)

	position, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, ticker)
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to query position table: %w", err)
	}

	return position, nil
}

// ListByFund retrieves all position rows for a fund, including zero-share
// rows. Callers that present holdings must filter those out.
func (r *PositionRepository) ListByFund(ctx context.Context, fundID string) ([]model.Position, error) {
	query := `
		SELECT id, fund_id, ticker, shares_held, last_purchase_price, last_purchase_date
		FROM position
		WHERE fund_id = ?
		ORDER BY ticker ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}

	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}
		positions = append(positions, position)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// UpdateHolding sets a position's share count, last purchase price, and last
// purchase date after a buy.
func (r *PositionRepository) UpdateHolding(ctx context.Context, positionID string, shares, price decimal.Decimal, purchaseDate time.Time) error {
	query := `
		UPDATE position
		SET shares_held = ?, last_purchase_price = ?, last_purchase_date = ?
		WHERE id = ?
	`

	if _, err := r.getQuerier().ExecContext(ctx, query,
		shares.String(), price.String(), FormatTime(purchaseDate), positionID); err != nil {
		return fmt.Errorf("failed to update position holding: %w", err)
	}

	return nil
}

// UpdateShares sets only a position's share count, used by sells which leave
// the last purchase price and date untouched.
func (r *PositionRepository) UpdateShares(ctx context.Context, positionID string, shares decimal.Decimal) error {
	query := `
		UPDATE position
		SET shares_held = ?
		WHERE id = ?
	`

	if _, err := r.getQuerier().ExecContext(ctx, query, shares.String(), positionID); err != nil {
		return fmt.Errorf("failed to update position shares: %w", err)
	}

	return nil
}

func scanPosition(row rowScanner) (model.Position, error) {
	var p model.Position
	var sharesStr, priceStr, dateStr string

	if err := row.Scan(&p.ID, &p.FundID, &p.Ticker, &sharesStr, &priceStr, &dateStr); err != nil {
		return model.Position{}, err
	}

	var err error
	if p.SharesHeld, err = ParseDecimal(sharesStr); err != nil {
		return model.Position{}, err
	}
	if p.LastPurchasePrice, err = ParseDecimal(priceStr); err != nil {
		return model.Position{}, err
	}
	if p.LastPurchaseDate, err = ParseTime(dateStr); err != nil {
		return model.Position{}, err
	}

	return p, nil
}
