package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest market data for a symbol as supplied by a price provider.
type Quote struct {
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	PreviousClose   decimal.Decimal `json:"previousClose"`
	IsMarketOpen    bool            `json:"isMarketOpen"`
	LatestTimestamp time.Time       `json:"latestTimestamp"`
}

// MarkUpdate is the outcome of re-marking one held symbol.
// DayChange is the unrealized change of the position today: units bought today
// against their price paid, older units against the previous close.
type MarkUpdate struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	Lots          int64           `json:"lots"`
	DayChange     decimal.Decimal `json:"dayChange"`
}

// MarkRefresh summarizes a refresh of every held symbol.
type MarkRefresh struct {
	Updated   []MarkUpdate      `json:"updated"`
	Failed    map[string]string `json:"failed"`
	DayChange decimal.Decimal   `json:"dayChange"`
}
