package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/response"
	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/validation"
)

// maxBodyBytes caps request bodies; every request type here is a handful of fields.
const maxBodyBytes = 1 << 16

// parseJSON decodes the request body into T, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if r.Body == nil {
		return req, fmt.Errorf("request body is required")
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// symbolParam returns the normalized {symbol} URL parameter.
func symbolParam(r *http.Request) string {
	return validation.NormalizeSymbol(chi.URLParam(r, "symbol"))
}

// respondServiceError maps a service error to an HTTP status.
// Business rejections become 4xx with the rejection message; anything else is a
// 500 carrying fallback as the message.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidQuantity),
		errors.Is(err, apperrors.ErrInvalidPrice),
		errors.Is(err, apperrors.ErrInvalidSymbol),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrPreviousCloseRequired):
		response.RespondError(w, http.StatusBadRequest, rootMessage(err), err.Error())
	case errors.Is(err, apperrors.ErrPositionNotFound),
		errors.Is(err, apperrors.ErrSymbolNotFound):
		response.RespondError(w, http.StatusNotFound, rootMessage(err), err.Error())
	case errors.Is(err, apperrors.ErrNoPosition),
		errors.Is(err, apperrors.ErrInsufficientShares),
		errors.Is(err, apperrors.ErrLedgerCorrupted):
		response.RespondError(w, http.StatusConflict, rootMessage(err), err.Error())
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrShareLimitExceeded):
		response.RespondError(w, http.StatusUnprocessableEntity, rootMessage(err), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}

// rootMessage returns the message of the known sentinel wrapped by err.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		apperrors.ErrInvalidQuantity,
		apperrors.ErrInvalidPrice,
		apperrors.ErrInvalidSymbol,
		apperrors.ErrInvalidDate,
		apperrors.ErrPositionNotFound,
		apperrors.ErrSymbolNotFound,
		apperrors.ErrNoPosition,
		apperrors.ErrInsufficientShares,
		apperrors.ErrLedgerCorrupted,
		apperrors.ErrInsufficientFunds,
		apperrors.ErrShareLimitExceeded,
		apperrors.ErrPreviousCloseRequired,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
