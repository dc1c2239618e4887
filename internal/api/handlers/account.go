package handlers

import (
	"net/http"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/response"
	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/service"
)

// AccountHandler handles HTTP requests for the cash account and the watchlist.
type AccountHandler struct {
	accountService *service.AccountService
	tradeService   *service.TradeService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependencies.
func NewAccountHandler(accountService *service.AccountService, tradeService *service.TradeService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		tradeService:   tradeService,
	}
}

// Account handles GET requests for cash, equity and portfolio value.
//
// Endpoint: GET /api/account
// Response: 200 OK with Account
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Account(w http.ResponseWriter, r *http.Request) {
	account, err := h.tradeService.Account(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccount.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// WatchlistResponse lists the watched symbols.
type WatchlistResponse struct {
	Symbols []string `json:"symbols"`
}

// Watchlist handles GET requests for the watched symbols in alphabetical order.
//
// Endpoint: GET /api/watchlist
// Response: 200 OK with WatchlistResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.accountService.Watchlist(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveWatchlist.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, WatchlistResponse{Symbols: symbols})
}

// ToggleWatchlistResponse reports whether the symbol is watched after the toggle.
type ToggleWatchlistResponse struct {
	Symbol  string `json:"symbol"`
	Watched bool   `json:"watched"`
}

// ToggleWatchlist handles POST requests that add or remove a symbol.
//
// Endpoint: POST /api/watchlist/{symbol}
// Response: 200 OK with ToggleWatchlistResponse
// Error: 400 Bad Request if the symbol is invalid (validated by middleware)
// Error: 500 Internal Server Error if the update fails
func (h *AccountHandler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	watched, err := h.accountService.ToggleWatchlist(r.Context(), symbol)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveWatchlist.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, ToggleWatchlistResponse{Symbol: symbol, Watched: watched})
}

// ClearWatchlist handles DELETE requests that empty the watchlist.
//
// Endpoint: DELETE /api/watchlist
// Response: 204 No Content
// Error: 500 Internal Server Error if the update fails
func (h *AccountHandler) ClearWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := h.accountService.ClearWatchlist(r.Context()); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveWatchlist.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
