package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/avdberg/fundledger/internal/api/request"
	"github.com/avdberg/fundledger/internal/service"
	"github.com/avdberg/fundledger/internal/validation"
	"github.com/go-chi/chi/v5"
)

// FundHandler handles HTTP requests for fund endpoints.
// It parses requests and delegates to the ledger, valuation, and composition
// services.
type FundHandler struct {
	ledgerService      *service.LedgerService
	valuationService   *service.ValuationService
	compositionService *service.CompositionService
}

// NewFundHandler creates a new FundHandler with the provided service dependencies.
func NewFundHandler(
	ledgerService *service.LedgerService,
	valuationService *service.ValuationService,
	compositionService *service.CompositionService,
) *FundHandler {
	return &FundHandler{
		ledgerService:      ledgerService,
		valuationService:   valuationService,
		compositionService: compositionService,
	}
}

// CreateFund handles POST requests to create a new fund.
//
// Endpoint: POST /api/fund
// Response: 201 Created with the new fund
// Errors: 400 on validation failure, 409 if the name is taken
func (h *FundHandler) CreateFund(w http.ResponseWriter, r *http.Request) {
	var req request.CreateFundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	if err := validation.ValidateCreateFund(req); err != nil {
		respondServiceError(w, err)
		return
	}

	fund, err := h.ledgerService.CreateFund(r.Context(), req.Name, req.InitialCash)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, fund)
}

// Funds handles GET requests to retrieve all funds.
//
// Endpoint: GET /api/fund
// Response: 200 OK with array of funds
func (h *FundHandler) Funds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.ledgerService.ListFunds(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, funds)
}

// Composition handles GET requests for a fund's current composition.
// Computing the total value appends a fresh valuation snapshot.
//
// Endpoint: GET /api/fund/{name}/composition
// Response: 200 OK with the composition
// Errors: 404 unknown fund, 502 price oracle unavailable
func (h *FundHandler) Composition(w http.ResponseWriter, r *http.Request) {
	fundName := chi.URLParam(r, "name")

	composition, err := h.compositionService.GetComposition(r.Context(), fundName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, composition)
}

// Operations handles GET requests for a fund's operation history.
//
// Endpoint: GET /api/fund/{name}/operations
// Response: 200 OK with the ordered operation log
func (h *FundHandler) Operations(w http.ResponseWriter, r *http.Request) {
	fundName := chi.URLParam(r, "name")

	operations, err := h.compositionService.GetOperations(r.Context(), fundName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, operations)
}

// Valuations handles GET requests for a fund's valuation history.
//
// Endpoint: GET /api/fund/{name}/valuations
// Response: 200 OK with the ordered valuation snapshots
func (h *FundHandler) Valuations(w http.ResponseWriter, r *http.Request) {
	fundName := chi.URLParam(r, "name")

	valuations, err := h.valuationService.GetValuations(r.Context(), fundName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, valuations)
}
