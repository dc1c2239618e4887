package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// OrderKind is the type of an executed order as recorded in the transaction log.
type OrderKind string

const (
	OrderBuy       OrderKind = "Market Buy"
	OrderSell      OrderKind = "Market Sell"
	OrderFreeGrant OrderKind = "Free Stock"
)

// Valid reports whether k is one of the known order kinds.
func (k OrderKind) Valid() bool {
	switch k {
	case OrderBuy, OrderSell, OrderFreeGrant:
		return true
	}
	return false
}

// TransactionRecord is an immutable entry of the transaction log.
// ID orders the log chronologically; OrderID is the receipt handed to callers.
type TransactionRecord struct {
	ID       int64           `json:"id"`
	OrderID  string          `json:"orderId"`
	Name     string          `json:"name"`
	Symbol   string          `json:"symbol"`
	Kind     OrderKind       `json:"orderType"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     string          `json:"date"`
}

// Total returns quantity × price.
func (t TransactionRecord) Total() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// TransactionFilters narrows a transaction log listing. Zero values match everything.
type TransactionFilters struct {
	Kinds     []OrderKind
	StartDate string
	EndDate   string
	Limit     int
}

// Match reports whether t passes the kind and date filters.
func (f TransactionFilters) Match(t TransactionRecord) bool {
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, t.Kind) {
		return false
	}
	if f.StartDate != "" && t.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && t.Date > f.EndDate {
		return false
	}
	return true
}
