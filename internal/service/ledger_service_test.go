package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avdberg/fundledger/internal/apperrors"
	"github.com/avdberg/fundledger/internal/model"
	"github.com/avdberg/fundledger/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestLedgerService_CreateFund(t *testing.T) {
	ctx := context.Background()

	t.Run("creates fund with CREATE operation and initial valuation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		fund, err := svc.Ledger.CreateFund(ctx, "Pension Fund", decimal.NewFromInt(100000))
		if err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}

		if fund.Name != "Pension Fund" {
			t.Errorf("Expected name 'Pension Fund', got %q", fund.Name)
		}
		if !fund.Cash.Equal(decimal.NewFromInt(100000)) {
			t.Errorf("Expected cash 100000, got %s", fund.Cash)
		}

		ops, err := svc.Composition.GetOperations(ctx, "Pension Fund")
		if err != nil {
			t.Fatalf("GetOperations failed: %v", err)
		}
		if len(ops) != 1 || ops[0].Type != model.OperationCreate {
			t.Fatalf("Expected a single CREATE operation, got %+v", ops)
		}
		if ops[0].Ticker != nil || ops[0].Shares != nil || ops[0].Price != nil {
			t.Error("Expected nil ticker/shares/price on CREATE operation")
		}

		valuations, err := svc.Valuation.GetValuations(ctx, "Pension Fund")
		if err != nil {
			t.Fatalf("GetValuations failed: %v", err)
		}
		if len(valuations) != 1 {
			t.Fatalf("Expected 1 initial valuation, got %d", len(valuations))
		}
		if !valuations[0].TotalValue.Equal(decimal.NewFromInt(100000)) {
			t.Errorf("Expected initial valuation 100000, got %s", valuations[0].TotalValue)
		}
	})

	t.Run("rejects duplicate fund name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "Twice", decimal.NewFromInt(100)); err != nil {
			t.Fatalf("first CreateFund failed: %v", err)
		}

		_, err := svc.Ledger.CreateFund(ctx, "Twice", decimal.NewFromInt(200))
		if !errors.Is(err, apperrors.ErrDuplicateFund) {
			t.Errorf("Expected ErrDuplicateFund, got %v", err)
		}

		// The original fund is untouched
		fund, err := svc.Ledger.GetFund(ctx, "Twice")
		if err != nil {
			t.Fatalf("GetFund failed: %v", err)
		}
		if !fund.Cash.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected cash 100, got %s", fund.Cash)
		}
	})

	t.Run("rejects negative initial cash", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		_, err := svc.Ledger.CreateFund(ctx, "Negative", decimal.NewFromInt(-1))
		if !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects empty fund name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		_, err := svc.Ledger.CreateFund(ctx, "  ", decimal.NewFromInt(100))
		if !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("accepts zero initial cash", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		fund, err := svc.Ledger.CreateFund(ctx, "Empty", decimal.Zero)
		if err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}
		if !fund.Cash.IsZero() {
			t.Errorf("Expected zero cash, got %s", fund.Cash)
		}
	})
}

func TestLedgerService_Buy(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts cost and opens a position at the quoted price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "F", decimal.NewFromInt(100000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}

		op, err := svc.Ledger.Buy(ctx, "F", "AAPL", decimal.NewFromInt(10))
		if err != nil {
			t.Fatalf("Buy failed: %v", err)
		}

		if op.Type != model.OperationBuy {
			t.Errorf("Expected BUY operation, got %s", op.Type)
		}
		if op.Price == nil || !op.Price.Equal(decimal.RequireFromString("150.25")) {
			t.Errorf("Expected recorded price 150.25, got %v", op.Price)
		}

		fund, err := svc.Ledger.GetFund(ctx, "F")
		if err != nil {
			t.Fatalf("GetFund failed: %v", err)
		}
		// 100000 - 10 * 150.25
		expected := decimal.RequireFromString("98497.5")
		if !fund.Cash.Equal(expected) {
			t.Errorf("Expected cash %s, got %s", expected, fund.Cash)
		}

		composition, err := svc.Composition.GetComposition(ctx, "F")
		if err != nil {
			t.Fatalf("GetComposition failed: %v", err)
		}
		if len(composition.Holdings) != 1 {
			t.Fatalf("Expected 1 holding, got %d", len(composition.Holdings))
		}
		if !composition.Holdings[0].SharesHeld.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Expected 10 shares held, got %s", composition.Holdings[0].SharesHeld)
		}
	})

	t.Run("repeat buy updates the existing position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "F", decimal.NewFromInt(100000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}
		if _, err := svc.Ledger.Buy(ctx, "F", "AAPL", decimal.NewFromInt(10)); err != nil {
			t.Fatalf("first Buy failed: %v", err)
		}

		// Price moves before the second buy
		svc.Quote.WithPrice("AAPL", "160.00")

		if _, err := svc.Ledger.Buy(ctx, "F", "AAPL", decimal.NewFromInt(5)); err != nil {
			t.Fatalf("second Buy failed: %v", err)
		}

		var rows int
		if err := db.QueryRow(`SELECT COUNT(*) FROM position WHERE ticker = 'AAPL'`).Scan(&rows); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if rows != 1 {
			t.Errorf("Expected 1 position row, got %d", rows)
		}

		composition, err := svc.Composition.GetComposition(ctx, "F")
		if err != nil {
			t.Fatalf("GetComposition failed: %v", err)
		}
		holding := composition.Holdings[0]
		if !holding.SharesHeld.Equal(decimal.NewFromInt(15)) {
			t.Errorf("Expected 15 shares held, got %s", holding.SharesHeld)
		}
		// Last purchase price is the latest trade price, not a weighted average
		if !holding.LastPurchasePrice.Equal(decimal.RequireFromString("160.00")) {
			t.Errorf("Expected last purchase price 160.00, got %s", holding.LastPurchasePrice)
		}
	})

	t.Run("insufficient cash leaves all state unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "Small", decimal.NewFromInt(1000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}

		// 10 * 150.25 = 1502.50 > 1000
		_, err := svc.Ledger.Buy(ctx, "Small", "AAPL", decimal.NewFromInt(10))
		if !errors.Is(err, apperrors.ErrInsufficientCash) {
			t.Fatalf("Expected ErrInsufficientCash, got %v", err)
		}

		fund, err := svc.Ledger.GetFund(ctx, "Small")
		if err != nil {
			t.Fatalf("GetFund failed: %v", err)
		}
		if !fund.Cash.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("Expected cash 1000, got %s", fund.Cash)
		}

		var positions int
		if err := db.QueryRow(`SELECT COUNT(*) FROM position`).Scan(&positions); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if positions != 0 {
			t.Errorf("Expected no positions, got %d", positions)
		}

		ops, err := svc.Composition.GetOperations(ctx, "Small")
		if err != nil {
			t.Fatalf("GetOperations failed: %v", err)
		}
		if len(ops) != 1 {
			t.Errorf("Expected only the CREATE operation, got %d records", len(ops))
		}
	})

	t.Run("unknown fund performs no writes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		_, err := svc.Ledger.Buy(ctx, "Ghost", "AAPL", decimal.NewFromInt(1))
		if !errors.Is(err, apperrors.ErrFundNotFound) {
			t.Fatalf("Expected ErrFundNotFound, got %v", err)
		}
		if svc.Quote.Calls != 0 {
			t.Errorf("Expected no oracle calls for unknown fund, got %d", svc.Quote.Calls)
		}

		var operations int
		if err := db.QueryRow(`SELECT COUNT(*) FROM operation`).Scan(&operations); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if operations != 0 {
			t.Errorf("Expected no operations, got %d", operations)
		}
	})

	t.Run("oracle failure makes no state change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "F", decimal.NewFromInt(100000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}

		_, err := svc.Ledger.Buy(ctx, "F", "UNKNOWN", decimal.NewFromInt(1))
		if !errors.Is(err, apperrors.ErrPriceUnavailable) {
			t.Fatalf("Expected ErrPriceUnavailable, got %v", err)
		}

		fund, err := svc.Ledger.GetFund(ctx, "F")
		if err != nil {
			t.Fatalf("GetFund failed: %v", err)
		}
		if !fund.Cash.Equal(decimal.NewFromInt(100000)) {
			t.Errorf("Expected cash unchanged at 100000, got %s", fund.Cash)
		}
	})

	t.Run("rejects non-positive share count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "F", decimal.NewFromInt(100000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}

		for _, shares := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
			if _, err := svc.Ledger.Buy(ctx, "F", "AAPL", shares); !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument for %s shares, got %v", shares, err)
			}
		}
	})
}

func TestLedgerService_Sell(t *testing.T) {
	ctx := context.Background()

	t.Run("credits proceeds and reduces the position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "F", decimal.NewFromInt(100000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}
		if _, err := svc.Ledger.Buy(ctx, "F", "AAPL", decimal.NewFromInt(10)); err != nil {
			t.Fatalf("Buy failed: %v", err)
		}

		// Price moves before the sell
		svc.Quote.WithPrice("AAPL", "160.00")

		op, err := svc.Ledger.Sell(ctx, "F", "AAPL", decimal.NewFromInt(4))
		if err != nil {
			t.Fatalf("Sell failed: %v", err)
		}
		if op.Type != model.OperationSell {
			t.Errorf("Expected SELL operation, got %s", op.Type)
		}

		fund, err := svc.Ledger.GetFund(ctx, "F")
		if err != nil {
			t.Fatalf("GetFund failed: %v", err)
		}
		// 100000 - 10*150.25 + 4*160.00
		expected := decimal.RequireFromString("99137.5")
		if !fund.Cash.Equal(expected) {
			t.Errorf("Expected cash %s, got %s", expected, fund.Cash)
		}

		composition, err := svc.Composition.GetComposition(ctx, "F")
		if err != nil {
			t.Fatalf("GetComposition failed: %v", err)
		}
		if !composition.Holdings[0].SharesHeld.Equal(decimal.NewFromInt(6)) {
			t.Errorf("Expected 6 shares held, got %s", composition.Holdings[0].SharesHeld)
		}

		ops, err := svc.Composition.GetOperations(ctx, "F")
		if err != nil {
			t.Fatalf("GetOperations failed: %v", err)
		}
		if len(ops) != 3 {
			t.Fatalf("Expected exactly 3 operations, got %d", len(ops))
		}
		wantOrder := []string{model.OperationCreate, model.OperationBuy, model.OperationSell}
		for i, want := range wantOrder {
			if ops[i].Type != want {
				t.Errorf("Expected operation %d to be %s, got %s", i, want, ops[i].Type)
			}
		}
	})

	t.Run("selling the full position leaves it absent from the composition", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "F", decimal.NewFromInt(100000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}
		if _, err := svc.Ledger.Buy(ctx, "F", "AAPL", decimal.NewFromInt(10)); err != nil {
			t.Fatalf("Buy failed: %v", err)
		}
		if _, err := svc.Ledger.Sell(ctx, "F", "AAPL", decimal.NewFromInt(10)); err != nil {
			t.Fatalf("Sell failed: %v", err)
		}

		composition, err := svc.Composition.GetComposition(ctx, "F")
		if err != nil {
			t.Fatalf("GetComposition failed: %v", err)
		}
		if len(composition.Holdings) != 0 {
			t.Errorf("Expected no holdings, got %+v", composition.Holdings)
		}
		// Cash round-trips to the starting balance at an unchanged price
		if !composition.Cash.Equal(decimal.NewFromInt(100000)) {
			t.Errorf("Expected cash 100000, got %s", composition.Cash)
		}
	})

	t.Run("insufficient shares leaves all state unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "F", decimal.NewFromInt(100000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}
		if _, err := svc.Ledger.Buy(ctx, "F", "AAPL", decimal.NewFromInt(3)); err != nil {
			t.Fatalf("Buy failed: %v", err)
		}

		_, err := svc.Ledger.Sell(ctx, "F", "AAPL", decimal.NewFromInt(5))
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}

		fund, err := svc.Ledger.GetFund(ctx, "F")
		if err != nil {
			t.Fatalf("GetFund failed: %v", err)
		}
		expected := decimal.RequireFromString("99549.25") // 100000 - 3*150.25
		if !fund.Cash.Equal(expected) {
			t.Errorf("Expected cash %s, got %s", expected, fund.Cash)
		}

		ops, err := svc.Composition.GetOperations(ctx, "F")
		if err != nil {
			t.Fatalf("GetOperations failed: %v", err)
		}
		if len(ops) != 2 {
			t.Errorf("Expected CREATE and BUY only, got %d operations", len(ops))
		}
	})

	t.Run("selling a ticker the fund never held fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Ledger.CreateFund(ctx, "F", decimal.NewFromInt(100000)); err != nil {
			t.Fatalf("CreateFund failed: %v", err)
		}

		_, err := svc.Ledger.Sell(ctx, "F", "TSLA", decimal.NewFromInt(1))
		if !errors.Is(err, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound, got %v", err)
		}
	})

	t.Run("unknown fund fails before touching the oracle", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		_, err := svc.Ledger.Sell(ctx, "Ghost", "AAPL", decimal.NewFromInt(1))
		if !errors.Is(err, apperrors.ErrFundNotFound) {
			t.Fatalf("Expected ErrFundNotFound, got %v", err)
		}
		if svc.Quote.Calls != 0 {
			t.Errorf("Expected no oracle calls, got %d", svc.Quote.Calls)
		}
	})
}
