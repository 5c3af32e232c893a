package service

import (
	"context"

	"github.com/avdberg/fundledger/internal/model"
	"github.com/avdberg/fundledger/internal/repository"
)

// CompositionService is the read-side reporter: it assembles a fund's current
// holdings, cash, and total value for external consumption, and exposes the
// append-only operation history.
type CompositionService struct {
	fundRepo         *repository.FundRepository
	operationRepo    *repository.OperationRepository
	valuationService *ValuationService
}

// NewCompositionService creates a new CompositionService with the provided dependencies.
func NewCompositionService(
	fundRepo *repository.FundRepository,
	operationRepo *repository.OperationRepository,
	valuationService *ValuationService,
) *CompositionService {
	return &CompositionService{
		fundRepo:         fundRepo,
		operationRepo:    operationRepo,
		valuationService: valuationService,
	}
}

// GetComposition returns the fund's current cash, open holdings priced at the
// oracle's current quotes, and total value. Computing the total necessarily
// appends a fresh valuation snapshot; no other state is mutated. Zero-share
// positions are absent from the holdings.
func (s *CompositionService) GetComposition(ctx context.Context, fundName string) (model.Composition, error) {
	return s.valuationService.Snapshot(ctx, fundName)
}

// GetOperations retrieves the fund's operation history in application order.
func (s *CompositionService) GetOperations(ctx context.Context, fundName string) ([]model.Operation, error) {
	fund, err := s.fundRepo.GetByName(ctx, fundName)
	if err != nil {
		return nil, err
	}
	return s.operationRepo.ListByFund(ctx, fund.ID)
}
