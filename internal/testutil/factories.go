package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
)

// LotBuilder provides a fluent interface for creating test lots.
//
// Example usage:
//
//	// Simple creation with defaults
//	lot := testutil.NewLot().Build(t, db)
//
//	// Customized lot
//	lot := testutil.NewLot().
//	    WithSymbol("MSFT").
//	    WithQuantity(3).
//	    WithPricePaid(10).
//	    WithDate("2024-01-01").
//	    Build(t, db)
type LotBuilder struct {
	Name         string
	Symbol       string
	Quantity     int64
	PricePaid    decimal.Decimal
	CurrentPrice decimal.Decimal
	Date         string
	markSet      bool
}

// NewLot creates a LotBuilder with sensible defaults.
func NewLot() *LotBuilder {
	return &LotBuilder{
		Name:      "Test Corp",
		Symbol:    "TEST",
		Quantity:  1,
		PricePaid: decimal.NewFromInt(10),
		Date:      "2024-01-01",
	}
}

// WithName sets a custom company name.
func (b *LotBuilder) WithName(name string) *LotBuilder {
	b.Name = name
	return b
}

// WithSymbol sets a custom symbol.
func (b *LotBuilder) WithSymbol(symbol string) *LotBuilder {
	b.Symbol = symbol
	return b
}

// WithQuantity sets the number of shares.
func (b *LotBuilder) WithQuantity(quantity int64) *LotBuilder {
	b.Quantity = quantity
	return b
}

// WithPricePaid sets the purchase price. The mark defaults to the same value.
func (b *LotBuilder) WithPricePaid(price float64) *LotBuilder {
	b.PricePaid = decimal.NewFromFloat(price)
	return b
}

// WithCurrentPrice sets the mark price.
func (b *LotBuilder) WithCurrentPrice(price float64) *LotBuilder {
	b.CurrentPrice = decimal.NewFromFloat(price)
	b.markSet = true
	return b
}

// WithDate sets the purchase date (YYYY-MM-DD).
func (b *LotBuilder) WithDate(date string) *LotBuilder {
	b.Date = date
	return b
}

// Build inserts the lot into the database and returns it with its ID assigned.
func (b *LotBuilder) Build(t *testing.T, db *sql.DB) model.Lot {
	t.Helper()

	mark := b.PricePaid
	if b.markSet {
		mark = b.CurrentPrice
	}

	lot := model.Lot{
		Name:         b.Name,
		Symbol:       b.Symbol,
		Quantity:     b.Quantity,
		PricePaid:    b.PricePaid,
		CurrentPrice: mark,
		Date:         b.Date,
	}

	id, err := repository.NewLotRepository(db).InsertLot(context.Background(), lot)
	if err != nil {
		t.Fatalf("Failed to create test lot: %v", err)
	}
	lot.ID = id

	return lot
}

// TransactionBuilder provides a fluent interface for creating test transaction log entries.
//
// Example usage:
//
//	rec := testutil.NewTransaction().WithKind(model.OrderSell).Build(t, db)
type TransactionBuilder struct {
	Name     string
	Symbol   string
	Kind     model.OrderKind
	Quantity int64
	Price    decimal.Decimal
	Date     string
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{
		Name:     "Test Corp",
		Symbol:   "TEST",
		Kind:     model.OrderBuy,
		Quantity: 1,
		Price:    decimal.NewFromInt(10),
		Date:     "2024-01-01",
	}
}

// WithSymbol sets a custom symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithKind sets the order kind.
func (b *TransactionBuilder) WithKind(kind model.OrderKind) *TransactionBuilder {
	b.Kind = kind
	return b
}

// WithQuantity sets the number of shares.
func (b *TransactionBuilder) WithQuantity(quantity int64) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithPrice sets the price per share.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.Price = decimal.NewFromFloat(price)
	return b
}

// WithDate sets the transaction date (YYYY-MM-DD).
func (b *TransactionBuilder) WithDate(date string) *TransactionBuilder {
	b.Date = date
	return b
}

// Build appends the entry to the transaction log and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.TransactionRecord {
	t.Helper()

	rec, err := repository.NewTransactionRepository(db).Append(context.Background(), model.TransactionRecord{
		Name:     b.Name,
		Symbol:   b.Symbol,
		Kind:     b.Kind,
		Quantity: b.Quantity,
		Price:    b.Price,
		Date:     b.Date,
	})
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return rec
}

// SetDailyPnL stores the daily realized P&L record.
func SetDailyPnL(t *testing.T, db *sql.DB, date string, value float64) {
	t.Helper()

	err := repository.NewDailyPnLRepository(db).Put(context.Background(), model.DailyPnL{
		Date:  date,
		Value: decimal.NewFromFloat(value),
	})
	if err != nil {
		t.Fatalf("Failed to set daily P&L: %v", err)
	}
}
