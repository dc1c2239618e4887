package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/handlers"
	custommiddleware "github.com/ndewijer/pocketprofit-ledger/internal/api/middleware"
	"github.com/ndewijer/pocketprofit-ledger/internal/config"
	"github.com/ndewijer/pocketprofit-ledger/internal/metrics"
	"github.com/ndewijer/pocketprofit-ledger/internal/service"
)

// Services bundles the services the HTTP layer delegates to.
type Services struct {
	System      *service.SystemService
	Ledger      *service.LedgerService
	Trade       *service.TradeService
	Transaction *service.TransactionService
	Account     *service.AccountService
	Quote       *service.QuoteService
	Clock       service.Clock
}

// NewRouter creates and configures the HTTP router
func NewRouter(s Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Handle("/metrics", metrics.Handler())

	systemHandler := handlers.NewSystemHandler(s.System)
	ledgerHandler := handlers.NewLedgerHandler(s.Ledger, s.Trade, s.Clock)
	tradeHandler := handlers.NewTradeHandler(s.Trade)
	transactionHandler := handlers.NewTransactionHandler(s.Transaction)
	accountHandler := handlers.NewAccountHandler(s.Account, s.Trade)
	quoteHandler := handlers.NewQuoteHandler(s.Quote)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/positions", ledgerHandler.Positions)
			r.Route("/positions/{symbol}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateSymbolMiddleware)
				r.Get("/", ledgerHandler.Position)
				r.Get("/today", ledgerHandler.PositionToday)
			})
			r.Get("/summary", ledgerHandler.Summary)
			r.Get("/pnl/today", ledgerHandler.RealizedPnLToday)
			r.With(custommiddleware.ValidateSymbolMiddleware).Put("/marks/{symbol}", ledgerHandler.SetMark)
		})

		r.Route("/trade", func(r chi.Router) {
			r.Post("/buy", tradeHandler.Buy)
			r.Post("/sell", tradeHandler.Sell)
			r.Post("/grant", tradeHandler.Grant)
			r.Post("/reset", tradeHandler.Reset)
		})

		r.Route("/transaction", func(r chi.Router) {
			r.Get("/", transactionHandler.AllTransactions)
			r.With(custommiddleware.ValidateSymbolMiddleware).Get("/{symbol}", transactionHandler.TransactionsPerSymbol)
		})

		r.Get("/account", accountHandler.Account)

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", accountHandler.Watchlist)
			r.Delete("/", accountHandler.ClearWatchlist)
			r.With(custommiddleware.ValidateSymbolMiddleware).Post("/{symbol}", accountHandler.ToggleWatchlist)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/refresh", quoteHandler.RefreshMarks)
			r.With(custommiddleware.ValidateSymbolMiddleware).Get("/{symbol}", quoteHandler.Quote)
		})
	})

	return r
}
