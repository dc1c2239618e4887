package model

import "github.com/shopspring/decimal"

// DailyPnL is the single persisted record of realized profit/loss for one trading day.
// A positive value means shares were sold at a profit.
type DailyPnL struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}
