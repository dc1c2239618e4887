package model

import "github.com/shopspring/decimal"

// Account is the cash side of the portfolio.
type Account struct {
	Cash           decimal.Decimal `json:"cash"`
	Equity         decimal.Decimal `json:"equity"`
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
	DateJoined     string          `json:"dateJoined"`
}

// TradeReceipt is returned to the caller after an order has been filled.
type TradeReceipt struct {
	Transaction TransactionRecord `json:"transaction"`
	Total       decimal.Decimal   `json:"total"`
	Cash        decimal.Decimal   `json:"cash"`
	FirstTrade  bool              `json:"firstTrade"`
	Liquidation *Liquidation      `json:"liquidation,omitempty"`
}

// LedgerSummary is the portfolio-wide view of holdings and today's realized P&L.
type LedgerSummary struct {
	Date             string          `json:"date"`
	Account          Account         `json:"account"`
	Positions        []Position      `json:"positions"`
	RealizedPnLToday decimal.Decimal `json:"realizedPnlToday"`
}
