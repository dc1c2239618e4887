package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// StockSplitRepository maintains the stock_split table.
// Splits are recorded for display only; the ledger never rewrites lots from them.
type StockSplitRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewStockSplitRepository creates a new StockSplitRepository with the provided database connection.
func NewStockSplitRepository(db *sql.DB) *StockSplitRepository {
	return &StockSplitRepository{db: db}
}

// WithTx returns a new StockSplitRepository scoped to the provided transaction.
func (r *StockSplitRepository) WithTx(tx *sql.Tx) *StockSplitRepository {
	return &StockSplitRepository{db: r.db, tx: tx}
}

// DeleteAll removes every pending split.
func (r *StockSplitRepository) DeleteAll(ctx context.Context) error {
	if _, err := pick(r.db, r.tx).ExecContext(ctx, `DELETE FROM stock_split`); err != nil {
		return fmt.Errorf("failed to clear stock_split table: %w", err)
	}
	return nil
}
