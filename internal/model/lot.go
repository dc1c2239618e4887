package model

import "github.com/shopspring/decimal"

// MaxPositionQuantity bounds the shares held of one symbol, and so the size of any order.
// Share sums stay far from int64 overflow and per-unit listings stay small.
const MaxPositionQuantity int64 = 1_000_000

// Lot is one purchase of a security that has not been fully sold yet.
// Lots of a symbol are consumed oldest first; the ID order is the FIFO order.
type Lot struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	PricePaid    decimal.Decimal `json:"pricePaid"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Date         string          `json:"date"`
}

// Cost returns quantity × price paid.
func (l Lot) Cost() decimal.Decimal {
	return l.PricePaid.Mul(decimal.NewFromInt(l.Quantity))
}

// Equity returns quantity × current (mark) price.
func (l Lot) Equity() decimal.Decimal {
	return l.CurrentPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// LotFill records how many units a liquidation took from one lot.
type LotFill struct {
	LotID     int64           `json:"lotId"`
	Quantity  int64           `json:"quantity"`
	Remaining int64           `json:"remaining"`
	MarkPrice decimal.Decimal `json:"markPrice"`
	PricePaid decimal.Decimal `json:"pricePaid"`
	Date      string          `json:"date"`
}

// Liquidation is the outcome of a FIFO sale.
// RealizedDelta is the amount posted to today's realized P&L.
type Liquidation struct {
	Symbol         string          `json:"symbol"`
	SharesSold     int64           `json:"sharesSold"`
	AmountReceived decimal.Decimal `json:"amountReceived"`
	RealizedDelta  decimal.Decimal `json:"realizedDelta"`
	Fills          []LotFill       `json:"fills"`
}

// Position aggregates all lots of one symbol.
// AverageCost and CurrentPrice are -1 when nothing is held.
type Position struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Quantity     int64           `json:"quantity"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	TotalEquity  decimal.Decimal `json:"totalEquity"`
	AverageCost  decimal.Decimal `json:"averageCost"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Lots         int             `json:"lots"`
}

// StockSplit describes a pending split. Stored but not applied by the ledger.
type StockSplit struct {
	ID          int64  `json:"id"`
	Symbol      string `json:"symbol"`
	ExDate      string `json:"exDate"`
	Description string `json:"description"` // ex. '7-for-1 split'
	FromFactor  int64  `json:"fromFactor"`
	ToFactor    int64  `json:"toFactor"`
}
