package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/avdberg/fundledger/internal/api/request"
	"github.com/avdberg/fundledger/internal/service"
	"github.com/avdberg/fundledger/internal/validation"
	"github.com/go-chi/chi/v5"
)

// TradeHandler handles HTTP requests for buy/sell operations and the bulk
// valuation trigger.
type TradeHandler struct {
	ledgerService    *service.LedgerService
	valuationService *service.ValuationService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependencies.
func NewTradeHandler(ledgerService *service.LedgerService, valuationService *service.ValuationService) *TradeHandler {
	return &TradeHandler{
		ledgerService:    ledgerService,
		valuationService: valuationService,
	}
}

// Buy handles POST requests to purchase shares for a fund at the oracle's
// current price.
//
// Endpoint: POST /api/fund/{name}/buy
// Response: 201 Created with the BUY operation record
// Errors: 400 validation, 404 unknown fund, 422 insufficient cash,
// 502 price oracle unavailable
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	fundName := chi.URLParam(r, "name")

	req, ok := h.decodeTrade(w, r)
	if !ok {
		return
	}

	op, err := h.ledgerService.Buy(r.Context(), fundName, req.Ticker, req.Shares)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, op)
}

// Sell handles POST requests to sell shares held by a fund at the oracle's
// current price.
//
// Endpoint: POST /api/fund/{name}/sell
// Response: 201 Created with the SELL operation record
// Errors: 400 validation, 404 unknown fund or position, 422 insufficient
// shares, 502 price oracle unavailable
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	fundName := chi.URLParam(r, "name")

	req, ok := h.decodeTrade(w, r)
	if !ok {
		return
	}

	op, err := h.ledgerService.Sell(r.Context(), fundName, req.Ticker, req.Shares)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, op)
}

// UpdateAll handles POST requests to run a bulk valuation over every fund.
// Per-fund failures are reported in the response body, not as an HTTP error.
//
// Endpoint: POST /api/fund/update-all
// Response: 200 OK with the per-fund result
func (h *TradeHandler) UpdateAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.valuationService.UpdateAllFunds(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *TradeHandler) decodeTrade(w http.ResponseWriter, r *http.Request) (request.TradeRequest, bool) {
	var req request.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return request.TradeRequest{}, false
	}

	if err := validation.ValidateTrade(req); err != nil {
		respondServiceError(w, err)
		return request.TradeRequest{}, false
	}

	return req, true
}
