package handlers

import (
	"net/http"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/request"
	"github.com/ndewijer/pocketprofit-ledger/internal/api/response"
	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/service"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// AllTransactions handles GET requests to retrieve the transaction log, newest first.
//
// Endpoint: GET /api/transaction?types=&startDate=&endDate=&limit=
// Response: 200 OK with array of TransactionRecord
// Error: 400 Bad Request if a filter is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	h.listTransactions(w, r, "")
}

// TransactionsPerSymbol handles GET requests to retrieve the log entries of one symbol, newest first.
//
// Endpoint: GET /api/transaction/{symbol}?types=&startDate=&endDate=&limit=
// Response: 200 OK with array of TransactionRecord
// Error: 400 Bad Request if the symbol (validated by middleware) or a filter is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) TransactionsPerSymbol(w http.ResponseWriter, r *http.Request) {
	h.listTransactions(w, r, symbolParam(r))
}

func (h *TransactionHandler) listTransactions(w http.ResponseWriter, r *http.Request, symbol string) {
	q := r.URL.Query()
	filters, err := request.ParseTransactionFilters(q.Get("types"), q.Get("startDate"), q.Get("endDate"), q.Get("limit"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	transactions, err := h.transactionService.Filter(r.Context(), symbol, *filters)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}
