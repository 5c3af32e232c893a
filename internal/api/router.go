package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avdberg/fundledger/internal/api/handlers"
	custommiddleware "github.com/avdberg/fundledger/internal/api/middleware"
	"github.com/avdberg/fundledger/internal/config"
	"github.com/avdberg/fundledger/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	ledgerService *service.LedgerService,
	valuationService *service.ValuationService,
	compositionService *service.CompositionService,
	cfg *config.Config,
) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API-key middleware for mutating routes
	apiKey, err := custommiddleware.NewAPIKey(cfg.Auth.FernetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build API-key middleware: %w", err)
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/fund", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(ledgerService, valuationService, compositionService)
			tradeHandler := handlers.NewTradeHandler(ledgerService, valuationService)

			r.Get("/", fundHandler.Funds)
			r.With(apiKey).Post("/", fundHandler.CreateFund)
			r.With(apiKey).Post("/update-all", tradeHandler.UpdateAll)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/composition", fundHandler.Composition)
				r.Get("/operations", fundHandler.Operations)
				r.Get("/valuations", fundHandler.Valuations)
				r.With(apiKey).Post("/buy", tradeHandler.Buy)
				r.With(apiKey).Post("/sell", tradeHandler.Sell)
			})
		})
	})

	return r, nil
}
