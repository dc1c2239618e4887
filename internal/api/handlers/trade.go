package handlers

import (
	"net/http"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/request"
	"github.com/ndewijer/pocketprofit-ledger/internal/api/response"
	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/service"
	"github.com/ndewijer/pocketprofit-ledger/internal/validation"
)

// TradeHandler handles HTTP requests that execute orders.
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependency.
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// Buy handles POST requests for a market buy.
//
// Endpoint: POST /api/trade/buy
// Request Body: BuyRequest (symbol, name, quantity, price)
// Response: 201 Created with TradeReceipt
// Error: 400 Bad Request if validation fails or quantity is below one share
// Error: 422 Unprocessable Entity if cash does not cover the order
// Error: 500 Internal Server Error if the order cannot be recorded
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BuyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateBuy(&req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	receipt, err := h.tradeService.Buy(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToExecuteTrade)
		return
	}

	response.RespondJSON(w, http.StatusCreated, receipt)
}

// Sell handles POST requests for a market sell, consuming lots oldest first.
//
// Endpoint: POST /api/trade/sell
// Request Body: SellRequest (symbol, name, quantity, price, previousClose)
// Response: 201 Created with TradeReceipt including the liquidation fills
// Error: 400 Bad Request if validation fails or quantity is below one share
// Error: 409 Conflict if no shares are held, too few are held, or the symbol is quarantined
// Error: 500 Internal Server Error if the sale cannot be recorded
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SellRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSell(&req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	receipt, err := h.tradeService.Sell(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToExecuteTrade)
		return
	}

	response.RespondJSON(w, http.StatusCreated, receipt)
}

// Grant handles POST requests that add free shares.
//
// Endpoint: POST /api/trade/grant
// Request Body: GrantRequest (symbol, name, quantity, price)
// Response: 201 Created with TradeReceipt
// Error: 400 Bad Request if validation fails
// Error: 500 Internal Server Error if the grant cannot be recorded
func (h *TradeHandler) Grant(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.GrantRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateGrant(&req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	receipt, err := h.tradeService.Grant(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToExecuteTrade)
		return
	}

	response.RespondJSON(w, http.StatusCreated, receipt)
}

// Reset handles POST requests that wipe the portfolio and restore the starting cash.
//
// Endpoint: POST /api/trade/reset
// Response: 200 OK with Account
// Error: 500 Internal Server Error if the reset fails
func (h *TradeHandler) Reset(w http.ResponseWriter, r *http.Request) {
	account, err := h.tradeService.ResetPortfolio(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToResetPortfolio.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}
