package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avdberg/fundledger/internal/model"
)

// OperationRepository provides append and read access to the operation log.
// Operations are immutable once written; there are no update or delete methods.
type OperationRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewOperationRepository creates a new OperationRepository with the provided database connection.
func NewOperationRepository(db *sql.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *OperationRepository) WithTx(tx *sql.Tx) *OperationRepository {
	return &OperationRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *OperationRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert appends an operation record.
func (r *OperationRepository) Insert(ctx context.Context, op *model.Operation) error {
	query := `
		INSERT INTO operation (id, fund_id, ticker, type, shares, price, operation_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var shares, price any
	if op.Shares != nil {
		shares = op.Shares.String()
	}
	if op.Price != nil {
		price = op.Price.String()
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		op.ID,
		op.FundID,
		op.Ticker,
		op.Type,
		shares,
		price,
		FormatTime(op.Date),
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation: %w", err)
	}

	return nil
}

// ListByFund retrieves a fund's operation history in the order the
// operations were applied.
func (r *OperationRepository) ListByFund(ctx context.Context, fundID string) ([]model.Operation, error) {
	query := `
		SELECT id, fund_id, ticker, type, shares, price, operation_date
		FROM operation
		WHERE fund_id = ?
		ORDER BY operation_date ASC, rowid ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation table: %w", err)
	}
	defer rows.Close()

	operations := []model.Operation{}

	for rows.Next() {
		var op model.Operation
		var sharesStr, priceStr sql.NullString
		var dateStr string

		if err := rows.Scan(&op.ID, &op.FundID, &op.Ticker, &op.Type, &sharesStr, &priceStr, &dateStr); err != nil {
			return nil, fmt.Errorf("failed to scan operation table results: %w", err)
		}

		if sharesStr.Valid {
			shares, err := ParseDecimal(sharesStr.String)
			if err != nil {
				return nil, err
			}
			op.Shares = &shares
		}
		if priceStr.Valid {
			price, err := ParseDecimal(priceStr.String)
			if err != nil {
				return nil, err
			}
			op.Price = &price
		}
		if op.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}

		operations = append(operations, op)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation table: %w", err)
	}

	return operations, nil
}

// CountByFund returns the number of operation records for a fund.
func (r *OperationRepository) CountByFund(ctx context.Context, fundID string) (int, error) {
	var count int
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operation WHERE fund_id = ?`, fundID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}
	return count, nil
}
