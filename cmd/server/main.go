package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avdberg/fundledger/internal/api"
	"github.com/avdberg/fundledger/internal/config"
	"github.com/avdberg/fundledger/internal/database"
	"github.com/avdberg/fundledger/internal/quote"
	"github.com/avdberg/fundledger/internal/repository"
	"github.com/avdberg/fundledger/internal/scheduler"
	"github.com/avdberg/fundledger/internal/service"
)

// valuationJob adapts the bulk valuation run to the scheduler's Job interface.
type valuationJob struct {
	valuationService *service.ValuationService
}

func (j *valuationJob) Name() string { return "bulk-valuation" }

func (j *valuationJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := j.valuationService.UpdateAllFunds(ctx)
	if err != nil {
		return err
	}

	log.Printf("Bulk valuation: %d funds updated, %d failed", len(result.Updated), len(result.Failed))
	for fund, reason := range result.Failed {
		log.Printf("Bulk valuation failed for fund %s: %s", fund, reason)
	}
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	fundRepo := repository.NewFundRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	valuationRepo := repository.NewValuationRepository(db)

	// Create price oracle and services
	quoteClient := quote.NewYahooClient(cfg.Quote.Timeout)
	locks := service.NewFundLocks()

	systemService := service.NewSystemService(db)
	ledgerService := service.NewLedgerService(
		db,
		fundRepo,
		positionRepo,
		operationRepo,
		valuationRepo,
		quoteClient,
		locks,
	)
	valuationService := service.NewValuationService(
		db,
		fundRepo,
		positionRepo,
		valuationRepo,
		quoteClient,
		locks,
	)
	compositionService := service.NewCompositionService(
		fundRepo,
		operationRepo,
		valuationService,
	)

	// Schedule the periodic bulk valuation
	sched := scheduler.New()
	if err := sched.AddJob(cfg.Valuation.Schedule, &valuationJob{valuationService: valuationService}); err != nil {
		log.Fatalf("Failed to schedule bulk valuation: %v", err)
	}
	sched.Start()

	// Create router
	router, err := api.NewRouter(systemService, ledgerService, valuationService, compositionService, cfg)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	sched.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
