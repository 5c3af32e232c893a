package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avdberg/fundledger/internal/apperrors"
	"github.com/avdberg/fundledger/internal/model"
	"github.com/avdberg/fundledger/internal/quote"
	"github.com/avdberg/fundledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService is the transaction engine: it executes create, buy, and sell
// against the ledger store, enforcing the cash and share invariants.
//
// Every mutating call runs under the fund's lock and inside a single database
// transaction, so either all associated writes (fund row, position row,
// operation row) commit or none do.
type LedgerService struct {
	db            *sql.DB
	fundRepo      *repository.FundRepository
	positionRepo  *repository.PositionRepository
	operationRepo *repository.OperationRepository
	valuationRepo *repository.ValuationRepository
	quoteClient   quote.Client
	locks         *FundLocks
}

// NewLedgerService creates a new LedgerService with the provided dependencies.
func NewLedgerService(
	db *sql.DB,
	fundRepo *repository.FundRepository,
	positionRepo *repository.PositionRepository,
	operationRepo *repository.OperationRepository,
	valuationRepo *repository.ValuationRepository,
	quoteClient quote.Client,
	locks *FundLocks,
) *LedgerService {
	return &LedgerService{
		db:            db,
		fundRepo:      fundRepo,
		positionRepo:  positionRepo,
		operationRepo: operationRepo,
		valuationRepo: valuationRepo,
		quoteClient:   quoteClient,
		locks:         locks,
	}
}

// CreateFund creates a new fund with the given starting cash, appending the
// CREATE operation and the initial valuation snapshot in the same transaction.
//
// Returns apperrors.ErrDuplicateFund if the name is taken and
// apperrors.ErrInvalidArgument for an empty name or negative starting cash.
func (s *LedgerService) CreateFund(ctx context.Context, name string, initialCash decimal.Decimal) (model.Fund, error) {
	if strings.TrimSpace(name) == "" {
		return model.Fund{}, fmt.Errorf("%w: fund name must not be empty", apperrors.ErrInvalidArgument)
	}
	if initialCash.IsNegative() {
		return model.Fund{}, fmt.Errorf("%w: initial cash must not be negative", apperrors.ErrInvalidArgument)
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	now := time.Now().UTC()
	fund := model.Fund{
		ID:         uuid.New().String(),
		Name:       name,
		Cash:       initialCash,
		CreatedAt:  now,
		LastUpdate: now,
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.fundRepo.WithTx(tx).Insert(ctx, &fund); err != nil {
			return err
		}

		op := model.Operation{
			ID:     uuid.New().String(),
			FundID: fund.ID,
			Type:   model.OperationCreate,
			Date:   now,
		}
		if err := s.operationRepo.WithTx(tx).Insert(ctx, &op); err != nil {
			return err
		}

		valuation := model.Valuation{
			ID:         uuid.New().String(),
			FundID:     fund.ID,
			Date:       now,
			TotalValue: initialCash,
		}
		return s.valuationRepo.WithTx(tx).Insert(ctx, &valuation)
	})
	if err != nil {
		return model.Fund{}, err
	}

	return fund, nil
}

// Buy purchases shares of a ticker at the oracle's current price, deducting
// the cost from the fund's cash. A repeat buy of a held ticker updates the
// existing position; the recorded last purchase price is the latest trade
// price, not a weighted average cost basis.
func (s *LedgerService) Buy(ctx context.Context, fundName, ticker string, shares decimal.Decimal) (model.Operation, error) {
	if err := validateTradeArgs(ticker, shares); err != nil {
		return model.Operation{}, err
	}

	unlock := s.locks.Lock(fundName)
	defer unlock()

	fund, err := s.fundRepo.GetByName(ctx, fundName)
	if err != nil {
		return model.Operation{}, err
	}

	price, err := s.quoteClient.GetPrice(ctx, ticker)
	if err != nil {
		return model.Operation{}, err
	}

	cost := price.Mul(shares)
	if cost.GreaterThan(fund.Cash) {
		return model.Operation{}, fmt.Errorf("%w: need %s, have %s",
			apperrors.ErrInsufficientCash, cost.String(), fund.Cash.String())
	}

	now := time.Now().UTC()
	op := model.Operation{
		ID:     uuid.New().String(),
		FundID: fund.ID,
		Ticker: &ticker,
		Type:   model.OperationBuy,
		Shares: &shares,
		Price:  &price,
		Date:   now,
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		positionRepo := s.positionRepo.WithTx(tx)

		position, err := positionRepo.GetByFundAndTicker(ctx, fund.ID, ticker)
		switch {
		case errors.Is(err, apperrors.ErrPositionNotFound):
			position = model.Position{
				ID:                uuid.New().String(),
				FundID:            fund.ID,
				Ticker:            ticker,
				SharesHeld:        shares,
				LastPurchasePrice: price,
				LastPurchaseDate:  now,
			}
			if err := positionRepo.Insert(ctx, &position); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			newShares := position.SharesHeld.Add(shares)
			if err := positionRepo.UpdateHolding(ctx, position.ID, newShares, price, now); err != nil {
				return err
			}
		}

		if err := s.fundRepo.WithTx(tx).UpdateCash(ctx, fund.ID, fund.Cash.Sub(cost), now); err != nil {
			return err
		}

		return s.operationRepo.WithTx(tx).Insert(ctx, &op)
	})
	if err != nil {
		return model.Operation{}, err
	}

	return op, nil
}

// Sell disposes of shares of a held ticker at the oracle's current price,
// crediting the proceeds to the fund's cash. The position row is kept with
// zero shares when fully sold.
func (s *LedgerService) Sell(ctx context.Context, fundName, ticker string, shares decimal.Decimal) (model.Operation, error) {
	if err := validateTradeArgs(ticker, shares); err != nil {
		return model.Operation{}, err
	}

	unlock := s.locks.Lock(fundName)
	defer unlock()

	fund, err := s.fundRepo.GetByName(ctx, fundName)
	if err != nil {
		return model.Operation{}, err
	}

	position, err := s.positionRepo.GetByFundAndTicker(ctx, fund.ID, ticker)
	if err != nil {
		return model.Operation{}, err
	}
	if position.SharesHeld.LessThan(shares) {
		return model.Operation{}, fmt.Errorf("%w: want %s, hold %s",
			apperrors.ErrInsufficientShares, shares.String(), position.SharesHeld.String())
	}

	price, err := s.quoteClient.GetPrice(ctx, ticker)
	if err != nil {
		return model.Operation{}, err
	}

	proceeds := price.Mul(shares)
	now := time.Now().UTC()
	op := model.Operation{
		ID:     uuid.New().String(),
		FundID: fund.ID,
		Ticker: &ticker,
		Type:   model.OperationSell,
		Shares: &shares,
		Price:  &price,
		Date:   now,
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.positionRepo.WithTx(tx).UpdateShares(ctx, position.ID, position.SharesHeld.Sub(shares)); err != nil {
			return err
		}

		if err := s.fundRepo.WithTx(tx).UpdateCash(ctx, fund.ID, fund.Cash.Add(proceeds), now); err != nil {
			return err
		}

		return s.operationRepo.WithTx(tx).Insert(ctx, &op)
	})
	if err != nil {
		return model.Operation{}, err
	}

	return op, nil
}

// GetFund retrieves a fund by name.
func (s *LedgerService) GetFund(ctx context.Context, fundName string) (model.Fund, error) {
	return s.fundRepo.GetByName(ctx, fundName)
}

// ListFunds retrieves all funds.
func (s *LedgerService) ListFunds(ctx context.Context) ([]model.Fund, error) {
	return s.fundRepo.List(ctx)
}

// inTx runs fn inside a database transaction, rolling back on error.
func (s *LedgerService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func validateTradeArgs(ticker string, shares decimal.Decimal) error {
	if strings.TrimSpace(ticker) == "" {
		return fmt.Errorf("%w: ticker must not be empty", apperrors.ErrInvalidArgument)
	}
	if !shares.IsPositive() {
		return fmt.Errorf("%w: shares must be positive", apperrors.ErrInvalidArgument)
	}
	return nil
}
