package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/request"
	"github.com/ndewijer/pocketprofit-ledger/internal/api/response"
	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/service"
	"github.com/ndewijer/pocketprofit-ledger/internal/validation"
)

// LedgerHandler handles HTTP requests for positions, marks and realized P&L.
type LedgerHandler struct {
	ledgerService *service.LedgerService
	tradeService  *service.TradeService
	clock         service.Clock
}

// NewLedgerHandler creates a new LedgerHandler with the provided service dependencies.
func NewLedgerHandler(ledgerService *service.LedgerService, tradeService *service.TradeService, clock service.Clock) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		tradeService:  tradeService,
		clock:         clock,
	}
}

// Positions handles GET requests for every held position.
//
// Endpoint: GET /api/ledger/positions
// Response: 200 OK with array of Position, ordered by oldest remaining lot
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.ledgerService.Positions(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePositions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// Position handles GET requests for one symbol.
//
// Endpoint: GET /api/ledger/positions/{symbol}
// Response: 200 OK with Position
// Error: 400 Bad Request if the symbol is invalid (validated by middleware)
// Error: 404 Not Found if no shares of the symbol are held
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) Position(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	position, err := h.ledgerService.Position(r.Context(), symbol)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePositions.Error(), err.Error())
		return
	}
	if position.Quantity == 0 {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPositionNotFound.Error(), symbol)
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}

// PositionTodayResponse lists the units of a symbol bought on one day.
type PositionTodayResponse struct {
	Symbol       string            `json:"symbol"`
	Date         string            `json:"date"`
	SharesBought int               `json:"sharesBought"`
	PricesPaid   []decimal.Decimal `json:"pricesPaid"`
}

// PositionToday handles GET requests for the units of a symbol bought on a day.
// The date query parameter defaults to today.
//
// Endpoint: GET /api/ledger/positions/{symbol}/today?date=YYYY-MM-DD
// Response: 200 OK with PositionTodayResponse
// Error: 400 Bad Request if the date is malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) PositionToday(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.clock.Today()
	} else if err := validation.ValidateDate(date); err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}

	prices, err := h.ledgerService.SharesBoughtToday(r.Context(), symbol, date)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePositions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, PositionTodayResponse{
		Symbol:       symbol,
		Date:         date,
		SharesBought: len(prices),
		PricesPaid:   prices,
	})
}

// Summary handles GET requests for the account, all positions and today's realized P&L.
//
// Endpoint: GET /api/ledger/summary
// Response: 200 OK with LedgerSummary
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.tradeService.Summary(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePositions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// RealizedPnLResponse is today's realized profit/loss.
type RealizedPnLResponse struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// RealizedPnLToday handles GET requests for today's realized P&L.
// A record left from a previous day is rolled over to zero by this read.
//
// Endpoint: GET /api/ledger/pnl/today
// Response: 200 OK with RealizedPnLResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *LedgerHandler) RealizedPnLToday(w http.ResponseWriter, r *http.Request) {
	today := h.clock.Today()

	value, err := h.ledgerService.TodaysRealizedGain(r.Context(), today)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRealizedPnL.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, RealizedPnLResponse{Date: today, Value: value})
}

// SetMarkResponse reports how many lots were re-marked.
type SetMarkResponse struct {
	Symbol      string          `json:"symbol"`
	Price       decimal.Decimal `json:"price"`
	LotsUpdated int64           `json:"lotsUpdated"`
}

// SetMark handles PUT requests to set the current price of every lot of a symbol.
// A zero price is accepted and leaves the marks unchanged.
//
// Endpoint: PUT /api/ledger/marks/{symbol}
// Request Body: SetMarkRequest (price)
// Response: 200 OK with SetMarkResponse
// Error: 400 Bad Request if the body is invalid or the price is negative
// Error: 500 Internal Server Error if the update fails
func (h *LedgerHandler) SetMark(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	req, err := parseJSON[request.SetMarkRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetMark(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	updated, err := h.ledgerService.SetCurrentPrice(r.Context(), symbol, req.Price)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToUpdateMarks)
		return
	}

	response.RespondJSON(w, http.StatusOK, SetMarkResponse{
		Symbol:      symbol,
		Price:       req.Price,
		LotsUpdated: updated,
	})
}
