package testutil

import (
	"database/sql"
	"testing"

	"github.com/avdberg/fundledger/internal/quote"
	"github.com/avdberg/fundledger/internal/repository"
	"github.com/avdberg/fundledger/internal/service"
)

// Services bundles a fully wired service layer over a test database and a
// mock price oracle.
type Services struct {
	Ledger      *service.LedgerService
	Valuation   *service.ValuationService
	Composition *service.CompositionService
	Quote       *MockQuoteClient
}

// NewTestServices wires the full service stack against the given test
// database with a mock price oracle.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t)
//	svc := testutil.NewTestServices(t, db)
//	fund, err := svc.Ledger.CreateFund(ctx, "Fund", decimal.NewFromInt(1000))
func NewTestServices(t *testing.T, db *sql.DB) *Services {
	t.Helper()
	return NewTestServicesWithQuote(t, db, NewMockQuoteClient())
}

// NewTestServicesWithQuote wires the service stack with a caller-provided
// price oracle, for tests that need custom quote behavior.
func NewTestServicesWithQuote(t *testing.T, db *sql.DB, quoteClient quote.Client) *Services {
	t.Helper()

	fundRepo := repository.NewFundRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	valuationRepo := repository.NewValuationRepository(db)
	locks := service.NewFundLocks()

	ledger := service.NewLedgerService(db, fundRepo, positionRepo, operationRepo, valuationRepo, quoteClient, locks)
	valuation := service.NewValuationService(db, fundRepo, positionRepo, valuationRepo, quoteClient, locks)
	composition := service.NewCompositionService(fundRepo, operationRepo, valuation)

	mock, _ := quoteClient.(*MockQuoteClient)

	return &Services{
		Ledger:      ledger,
		Valuation:   valuation,
		Composition: composition,
		Quote:       mock,
	}
}
