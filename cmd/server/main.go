package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/pocketprofit-ledger/internal/api"
	"github.com/ndewijer/pocketprofit-ledger/internal/config"
	"github.com/ndewijer/pocketprofit-ledger/internal/database"
	"github.com/ndewijer/pocketprofit-ledger/internal/quote"
	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
	"github.com/ndewijer/pocketprofit-ledger/internal/scheduler"
	"github.com/ndewijer/pocketprofit-ledger/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log))

	ctx := context.Background()

	// Open database connection
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.Database.Path, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("connected to database", "path", cfg.Database.Path)

	clock := service.NewClock(cfg.Ledger.Location)

	// Create repositories
	lotRepo := repository.NewLotRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	dailyPnLRepo := repository.NewDailyPnLRepository(db)
	stockSplitRepo := repository.NewStockSplitRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	// Create services
	transactionService := service.NewTransactionService(transactionRepo)
	dailyPnLService := service.NewDailyPnLService(dailyPnLRepo)
	ledgerService := service.NewLedgerService(
		db,
		lotRepo,
		stockSplitRepo,
		transactionService,
		dailyPnLService,
	)
	accountService := service.NewAccountService(accountRepo, cfg.Ledger.StartingCash, clock)
	if err := accountService.Initialize(ctx); err != nil {
		slog.Error("failed to initialize account", "err", err)
		os.Exit(1)
	}
	tradeService := service.NewTradeService(
		ledgerService,
		accountService,
		transactionService,
		clock,
	)
	quoteService := service.NewQuoteService(
		quote.NewYahooClient(cfg.Quotes.BaseURL, 10*time.Second),
		ledgerService,
		clock,
		cfg.Quotes.Concurrency,
	)
	systemService := service.NewSystemService(db, map[string]bool{
		"mark_refresh": cfg.Quotes.RefreshSchedule != "",
		"metrics":      true,
	})

	jobs, err := scheduler.New(cfg.Ledger.Location, cfg.Quotes.RefreshSchedule, quoteService, ledgerService, clock.Today)
	if err != nil {
		slog.Error("failed to create scheduler", "err", err)
		os.Exit(1)
	}
	jobs.Start()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Ledger:      ledgerService,
		Trade:       tradeService,
		Transaction: transactionService,
		Account:     accountService,
		Quote:       quoteService,
		Clock:       clock,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.Server.Addr, "timezone", cfg.Ledger.Location.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := jobs.Stop(shutdownCtx); err != nil {
		slog.Warn("scheduled jobs did not stop in time", "err", err)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}

// newLogger builds the process logger from the log configuration.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
