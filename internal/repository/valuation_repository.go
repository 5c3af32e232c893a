package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avdberg/fundledger/internal/model"
)

// ValuationRepository provides append and read access to valuation snapshots.
// Valuations are immutable once written.
type ValuationRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewValuationRepository creates a new ValuationRepository with the provided database connection.
func NewValuationRepository(db *sql.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ValuationRepository) WithTx(tx *sql.Tx) *ValuationRepository {
	return &ValuationRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ValuationRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert appends a valuation snapshot.
func (r *ValuationRepository) Insert(ctx context.Context, valuation *model.Valuation) error {
	query := `
		INSERT INTO valuation (id, fund_id, valuation_date, total_value)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		valuation.ID,
		valuation.FundID,
		FormatTime(valuation.Date),
		valuation.TotalValue.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert valuation: %w", err)
	}

	return nil
}

// ListByFund retrieves a fund's valuation history, oldest first.
func (r *ValuationRepository) ListByFund(ctx context.Context, fundID string) ([]model.Valuation, error) {
	query := `
		SELECT id, fund_id, valuation_date, total_value
		FROM valuation
		WHERE fund_id = ?
		ORDER BY valuation_date ASC, rowid ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation table: %w", err)
	}
	defer rows.Close()

	valuations := []model.Valuation{}

	for rows.Next() {
		var v model.Valuation
		var dateStr, totalStr string

		if err := rows.Scan(&v.ID, &v.FundID, &dateStr, &totalStr); err != nil {
			return nil, fmt.Errorf("failed to scan valuation table results: %w", err)
		}

		if v.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if v.TotalValue, err = ParseDecimal(totalStr); err != nil {
			return nil, err
		}

		valuations = append(valuations, v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuation table: %w", err)
	}

	return valuations, nil
}

// LatestByFund retrieves a fund's most recent valuation snapshot.
// Returns sql.ErrNoRows wrapped if the fund has no valuations yet.
func (r *ValuationRepository) LatestByFund(ctx context.Context, fundID string) (model.Valuation, error) {
	query := `
		SELECT id, fund_id, valuation_date, total_value
		FROM valuation
		WHERE fund_id = ?
		ORDER BY valuation_date DESC, rowid DESC
		LIMIT 1
	`

	var v model.Valuation
	var dateStr, totalStr string

	err := r.getQuerier().QueryRowContext(ctx, query, fundID).Scan(&v.ID, &v.FundID, &dateStr, &totalStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Valuation{}, fmt.Errorf("no valuations for fund %s: %w", fundID, err)
	}
	if err != nil {
		return model.Valuation{}, fmt.Errorf("failed to query valuation table: %w", err)
	}

	if v.Date, err = ParseTime(dateStr); err != nil {
		return model.Valuation{}, err
	}
	if v.TotalValue, err = ParseDecimal(totalStr); err != nil {
		return model.Valuation{}, err
	}

	return v, nil
}
