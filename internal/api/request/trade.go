package request

import "github.com/shopspring/decimal"

// BuyRequest is the request body for a market buy.
// Prices accept JSON numbers or decimal strings.
type BuyRequest struct {
	Symbol   string          `json:"symbol"`   // Symbol is the ticker of the security.
	Name     string          `json:"name"`     // Name is the company name stored with the lot.
	Quantity int64           `json:"quantity"` // Quantity is the number of whole shares.
	Price    decimal.Decimal `json:"price"`    // Price is the fill price per share.
}

// SellRequest is the request body for a market sell.
type SellRequest struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`         // Price is the quoted price recorded in the log.
	PreviousClose decimal.Decimal `json:"previousClose"` // PreviousClose is the basis for lots bought before today.
}

// GrantRequest is the request body for free shares.
type GrantRequest struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"` // Price is the market price at the time of the grant.
}

// SetMarkRequest is the request body for updating the current price of a held symbol.
type SetMarkRequest struct {
	Price decimal.Decimal `json:"price"`
}
