package validation

import (
	"fmt"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/request"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

var quantityLimitMessage = fmt.Sprintf("quantity cannot exceed %d shares", model.MaxPositionQuantity)

// ValidateBuy validates a market buy request.
// The symbol is normalized in place.
//
// Required fields:
//   - symbol: Must be a valid ticker
//   - price: Must be positive
//
// Quantities above model.MaxPositionQuantity are a field error. Orders for fewer
// than one share are rejected by the trade service as a business rule.
func ValidateBuy(req *request.BuyRequest) error {
	errors := make(map[string]string)

	req.Symbol = NormalizeSymbol(req.Symbol)
	if err := ValidateSymbol(req.Symbol); err != nil {
		errors["symbol"] = err.Error()
	}

	if !req.Price.IsPositive() {
		errors["price"] = "price must be positive"
	}

	if req.Quantity > model.MaxPositionQuantity {
		errors["quantity"] = quantityLimitMessage
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSell validates a market sell request.
// The symbol is normalized in place.
//
// Required fields:
//   - symbol: Must be a valid ticker
//   - price: Must be positive
//   - previousClose: Must not be negative
//   - quantity: At most model.MaxPositionQuantity
func ValidateSell(req *request.SellRequest) error {
	errors := make(map[string]string)

	req.Symbol = NormalizeSymbol(req.Symbol)
	if err := ValidateSymbol(req.Symbol); err != nil {
		errors["symbol"] = err.Error()
	}

	if !req.Price.IsPositive() {
		errors["price"] = "price must be positive"
	}

	if req.PreviousClose.IsNegative() {
		errors["previousClose"] = "previousClose cannot be negative"
	}

	if req.Quantity > model.MaxPositionQuantity {
		errors["quantity"] = quantityLimitMessage
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateGrant validates a free share grant.
func ValidateGrant(req *request.GrantRequest) error {
	errors := make(map[string]string)

	req.Symbol = NormalizeSymbol(req.Symbol)
	if err := ValidateSymbol(req.Symbol); err != nil {
		errors["symbol"] = err.Error()
	}

	if req.Price.IsNegative() {
		errors["price"] = "price cannot be negative"
	}

	if req.Quantity > model.MaxPositionQuantity {
		errors["quantity"] = quantityLimitMessage
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSetMark validates a mark price update. Zero is allowed and ignored by the ledger.
func ValidateSetMark(req request.SetMarkRequest) error {
	if req.Price.IsNegative() {
		return &Error{Fields: map[string]string{"price": "price cannot be negative"}}
	}
	return nil
}
