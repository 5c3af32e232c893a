package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/avdberg/fundledger/internal/model"
	"github.com/avdberg/fundledger/internal/repository"
	"github.com/avdberg/fundledger/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestOperationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips nullable ticker, shares, and price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewOperationRepository(db)
		fund := testutil.NewFund().Build(t, db)

		create := model.Operation{
			ID:     testutil.MakeID(),
			FundID: fund.ID,
			Type:   model.OperationCreate,
			Date:   time.Now().UTC(),
		}
		if err := repo.Insert(ctx, &create); err != nil {
			t.Fatalf("Insert CREATE failed: %v", err)
		}

		ticker := "AAPL"
		shares := decimal.NewFromInt(10)
		price := decimal.RequireFromString("150.25")
		buy := model.Operation{
			ID:     testutil.MakeID(),
			FundID: fund.ID,
			Ticker: &ticker,
			Type:   model.OperationBuy,
			Shares: &shares,
			Price:  &price,
			Date:   time.Now().UTC(),
		}
		if err := repo.Insert(ctx, &buy); err != nil {
			t.Fatalf("Insert BUY failed: %v", err)
		}

		ops, err := repo.ListByFund(ctx, fund.ID)
		if err != nil {
			t.Fatalf("ListByFund failed: %v", err)
		}
		if len(ops) != 2 {
			t.Fatalf("Expected 2 operations, got %d", len(ops))
		}

		if ops[0].Ticker != nil || ops[0].Shares != nil || ops[0].Price != nil {
			t.Error("Expected nil fields on CREATE operation")
		}
		if ops[1].Ticker == nil || *ops[1].Ticker != "AAPL" {
			t.Errorf("Expected ticker AAPL, got %v", ops[1].Ticker)
		}
		if ops[1].Shares == nil || !ops[1].Shares.Equal(shares) {
			t.Errorf("Expected shares %s, got %v", shares, ops[1].Shares)
		}
		if ops[1].Price == nil || !ops[1].Price.Equal(price) {
			t.Errorf("Expected price %s, got %v", price, ops[1].Price)
		}
	})

	t.Run("lists operations in application order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewOperationRepository(db)
		fund := testutil.NewFund().Build(t, db)

		base := time.Now().UTC()
		for i, kind := range []string{model.OperationCreate, model.OperationBuy, model.OperationSell} {
			op := model.Operation{
				ID:     testutil.MakeID(),
				FundID: fund.ID,
				Type:   kind,
				Date:   base.Add(time.Duration(i) * time.Millisecond),
			}
			if err := repo.Insert(ctx, &op); err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
		}

		ops, err := repo.ListByFund(ctx, fund.ID)
		if err != nil {
			t.Fatalf("ListByFund failed: %v", err)
		}

		want := []string{model.OperationCreate, model.OperationBuy, model.OperationSell}
		for i, kind := range want {
			if ops[i].Type != kind {
				t.Errorf("Expected operation %d to be %s, got %s", i, kind, ops[i].Type)
			}
		}
	})
}
