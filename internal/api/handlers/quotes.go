package handlers

import (
	"net/http"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/response"
	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/service"
)

// QuoteHandler handles HTTP requests for market quotes and mark refreshes.
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler with the provided service dependency.
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// Quote handles GET requests for the latest quote of a symbol.
//
// Endpoint: GET /api/quotes/{symbol}
// Response: 200 OK with Quote
// Error: 404 Not Found if the provider has no data for the symbol
// Error: 500 Internal Server Error if the provider call fails
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.quoteService.Quote(r.Context(), symbolParam(r))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveQuote)
		return
	}

	response.RespondJSON(w, http.StatusOK, q)
}

// RefreshMarks handles POST requests that re-mark every held symbol from fresh quotes.
// Symbols whose quote fails are listed in the response and keep their previous mark.
//
// Endpoint: POST /api/quotes/refresh
// Response: 200 OK with MarkRefresh
// Error: 500 Internal Server Error if the held symbols cannot be read
func (h *QuoteHandler) RefreshMarks(w http.ResponseWriter, r *http.Request) {
	refresh, err := h.quoteService.RefreshMarks(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToUpdateMarks.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, refresh)
}
