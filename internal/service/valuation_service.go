package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/avdberg/fundledger/internal/model"
	"github.com/avdberg/fundledger/internal/quote"
	"github.com/avdberg/fundledger/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// bulkUpdateConcurrency bounds the number of funds valued in parallel during
// a bulk update. Funds are independent; operations within a fund stay
// serialized by the fund lock.
const bulkUpdateConcurrency = 4

// ValuationService is the valuation engine: it computes a fund's total value
// (cash plus market value of all open positions at oracle prices) and appends
// the result to the fund's immutable valuation history.
type ValuationService struct {
	db            *sql.DB
	fundRepo      *repository.FundRepository
	positionRepo  *repository.PositionRepository
	valuationRepo *repository.ValuationRepository
	quoteClient   quote.Client
	locks         *FundLocks
}

// NewValuationService creates a new ValuationService with the provided dependencies.
func NewValuationService(
	db *sql.DB,
	fundRepo *repository.FundRepository,
	positionRepo *repository.PositionRepository,
	valuationRepo *repository.ValuationRepository,
	quoteClient quote.Client,
	locks *FundLocks,
) *ValuationService {
	return &ValuationService{
		db:            db,
		fundRepo:      fundRepo,
		positionRepo:  positionRepo,
		valuationRepo: valuationRepo,
		quoteClient:   quoteClient,
		locks:         locks,
	}
}

// ValueFund values the named fund at current oracle prices and appends one
// valuation snapshot, even when the total is unchanged. A price failure on
// any held ticker aborts the whole valuation without writing anything; a
// missing price would corrupt the total, so there is no fallback to zero or
// to the last known price.
func (s *ValuationService) ValueFund(ctx context.Context, fundName string) (model.Valuation, error) {
	unlock := s.locks.Lock(fundName)
	defer unlock()

	_, valuation, err := s.snapshotLocked(ctx, fundName)
	return valuation, err
}

// Snapshot values the named fund and returns the full composition built from
// the same price fetches, so the reported holdings and the recorded valuation
// can never disagree.
func (s *ValuationService) Snapshot(ctx context.Context, fundName string) (model.Composition, error) {
	unlock := s.locks.Lock(fundName)
	defer unlock()

	composition, _, err := s.snapshotLocked(ctx, fundName)
	return composition, err
}

// snapshotLocked computes holdings and total value and persists the valuation
// snapshot. Callers must hold the fund lock.
func (s *ValuationService) snapshotLocked(ctx context.Context, fundName string) (model.Composition, model.Valuation, error) {
	fund, err := s.fundRepo.GetByName(ctx, fundName)
	if err != nil {
		return model.Composition{}, model.Valuation{}, err
	}

	positions, err := s.positionRepo.ListByFund(ctx, fund.ID)
	if err != nil {
		return model.Composition{}, model.Valuation{}, err
	}

	total := fund.Cash
	holdings := []model.Holding{}

	for _, position := range positions {
		if !position.SharesHeld.IsPositive() {
			continue
		}

		price, err := s.quoteClient.GetPrice(ctx, position.Ticker)
		if err != nil {
			return model.Composition{}, model.Valuation{}, err
		}

		marketValue := price.Mul(position.SharesHeld)
		total = total.Add(marketValue)

		holdings = append(holdings, model.Holding{
			Ticker:            position.Ticker,
			SharesHeld:        position.SharesHeld,
			LastPurchasePrice: position.LastPurchasePrice,
			LastPurchaseDate:  position.LastPurchaseDate,
			MarketPrice:       price,
			MarketValue:       marketValue,
		})
	}

	now := time.Now().UTC()
	valuation := model.Valuation{
		ID:         uuid.New().String(),
		FundID:     fund.ID,
		Date:       now,
		TotalValue: total,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Composition{}, model.Valuation{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.valuationRepo.WithTx(tx).Insert(ctx, &valuation); err != nil {
		_ = tx.Rollback()
		return model.Composition{}, model.Valuation{}, err
	}
	if err := s.fundRepo.WithTx(tx).TouchLastUpdate(ctx, fund.ID, now); err != nil {
		_ = tx.Rollback()
		return model.Composition{}, model.Valuation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Composition{}, model.Valuation{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	composition := model.Composition{
		FundName:   fund.Name,
		Cash:       fund.Cash,
		Holdings:   holdings,
		TotalValue: total,
	}

	return composition, valuation, nil
}

// BulkUpdateResult reports the outcome of a bulk valuation run: the funds
// that received a new snapshot and, per failed fund, the reason.
type BulkUpdateResult struct {
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// UpdateAllFunds values every fund in the ledger, appending one valuation
// snapshot per fund. Funds are processed in parallel with bounded
// concurrency; a failure on one fund (an unavailable price for one of its
// tickers, typically) is recorded in the result and never aborts the others.
func (s *ValuationService) UpdateAllFunds(ctx context.Context) (BulkUpdateResult, error) {
	funds, err := s.fundRepo.List(ctx)
	if err != nil {
		return BulkUpdateResult{}, err
	}

	result := BulkUpdateResult{
		Updated: []string{},
		Failed:  map[string]string{},
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(bulkUpdateConcurrency)

	for _, fund := range funds {
		fund := fund
		g.Go(func() error {
			_, valErr := s.ValueFund(ctx, fund.Name)

			mu.Lock()
			defer mu.Unlock()
			if valErr != nil {
				result.Failed[fund.Name] = valErr.Error()
			} else {
				result.Updated = append(result.Updated, fund.Name)
			}
			// Per-fund failures are collected, not propagated.
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	if len(result.Failed) == 0 {
		result.Failed = nil
	}

	return result, nil
}

// GetValuations retrieves the named fund's valuation history, oldest first.
func (s *ValuationService) GetValuations(ctx context.Context, fundName string) ([]model.Valuation, error) {
	fund, err := s.fundRepo.GetByName(ctx, fundName)
	if err != nil {
		return nil, err
	}
	return s.valuationRepo.ListByFund(ctx, fund.ID)
}
