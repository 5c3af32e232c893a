package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avdberg/fundledger/internal/apperrors"
	"github.com/avdberg/fundledger/internal/model"
	"github.com/shopspring/decimal"
)

// FundRepository provides data access methods for the fund table.
type FundRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewFundRepository creates a new FundRepository with the provided database connection.
func NewFundRepository(db *sql.DB) *FundRepository {
	return &FundRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *FundRepository) WithTx(tx *sql.Tx) *FundRepository {
	return &FundRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *FundRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert stores a new fund. A unique-constraint violation on the name is
// reported as apperrors.ErrDuplicateFund.
func (r *FundRepository) Insert(ctx context.Context, fund *model.Fund) error {
	query := `
		INSERT INTO fund (id, name, cash, created_at, last_update)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		fund.ID,
		fund.Name,
		fund.Cash.String(),
		FormatTime(fund.CreatedAt),
		FormatTime(fund.LastUpdate),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateFund, fund.Name)
		}
		return fmt.Errorf("failed to insert fund: %w", err)
	}

	return nil
}

// GetByName retrieves a fund by its unique name.
// Returns apperrors.ErrFundNotFound if no fund with that name exists.
func (r *FundRepository) GetByName(ctx context.Context, name string) (model.Fund, error) {
	query := `
		SELECT id, name, cash, created_at, last_update
		FROM fund
		WHERE name = ?
	`

	row := r.getQuerier().QueryRowContext(ctx, query, name)

	fund, err := scanFund(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Fund{}, fmt.Errorf("%w: %s", apperrors.ErrFundNotFound, name)
	}
	if err != nil {
		return model.Fund{}, fmt.Errorf("failed to query fund table: %w", err)
	}

	return fund, nil
}

// List retrieves all funds ordered by creation date.
// Returns an empty slice if no funds exist.
func (r *FundRepository) List(ctx context.Context) ([]model.Fund, error) {
	query := `
		SELECT id, name, cash, created_at, last_update
		FROM fund
		ORDER BY created_at ASC, name ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund table: %w", err)
	}
	defer rows.Close()

	funds := []model.Fund{}

	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund table results: %w", err)
		}
		funds = append(funds, fund)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund table: %w", err)
	}

	return funds, nil
}

// UpdateCash sets a fund's cash balance and last-update timestamp.
func (r *FundRepository) UpdateCash(ctx context.Context, fundID string, cash decimal.Decimal, lastUpdate time.Time) error {
	query := `
		UPDATE fund
		SET cash = ?, last_update = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query, cash.String(), FormatTime(lastUpdate), fundID)
	if err != nil {
		return fmt.Errorf("failed to update fund cash: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %s", apperrors.ErrFundNotFound, fundID)
	}

	return nil
}

// TouchLastUpdate sets only the fund's last-update timestamp, used by
// valuation runs that do not change cash.
func (r *FundRepository) TouchLastUpdate(ctx context.Context, fundID string, lastUpdate time.Time) error {
	query := `
		UPDATE fund
		SET last_update = ?
		WHERE id = ?
	`

	if _, err := r.getQuerier().ExecContext(ctx, query, FormatTime(lastUpdate), fundID); err != nil {
		return fmt.Errorf("failed to update fund timestamp: %w", err)
	}

	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFund(row rowScanner) (model.Fund, error) {
	var f model.Fund
	var cashStr, createdStr, updatedStr string

	if err := row.Scan(&f.ID, &f.Name, &cashStr, &createdStr, &updatedStr); err != nil {
		return model.Fund{}, err
	}

	var err error
	if f.Cash, err = ParseDecimal(cashStr); err != nil {
		return model.Fund{}, err
	}
	if f.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Fund{}, err
	}
	if f.LastUpdate, err = ParseTime(updatedStr); err != nil {
		return model.Fund{}, err
	}

	return f, nil
}
