package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

// LotRepository provides data access methods for the lot table.
// It stores the purchase lots that have not been sold yet and answers the
// aggregate questions (share count, cost, equity) asked about them.
type LotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewLotRepository creates a new LotRepository with the provided database connection.
func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

// WithTx returns a new LotRepository scoped to the provided transaction.
func (r *LotRepository) WithTx(tx *sql.Tx) *LotRepository {
	return &LotRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *LotRepository) getQuerier() querier {
	return pick(r.db, r.tx)
}

// InsertLot appends a new lot and returns its identifier.
// Identifiers increase monotonically, so a later purchase always sorts after an earlier one.
func (r *LotRepository) InsertLot(ctx context.Context, lot model.Lot) (int64, error) {
	query := `
		INSERT INTO lot (name, symbol, quantity, price_paid, current_price, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		lot.Name,
		lot.Symbol,
		lot.Quantity,
		lot.PricePaid,
		lot.CurrentPrice,
		lot.Date,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read lot id: %w", err)
	}
	return id, nil
}

// LotsFor returns every lot of symbol, oldest first.
// Returns an empty slice when the symbol is not held.
func (r *LotRepository) LotsFor(ctx context.Context, symbol string) ([]model.Lot, error) {
	query := `
		SELECT id, name, symbol, quantity, price_paid, current_price, date
		FROM lot
		WHERE symbol = ?
		ORDER BY id ASC
	`
	return r.queryLots(ctx, query, symbol)
}

// AllLots returns every lot in the store, oldest first.
func (r *LotRepository) AllLots(ctx context.Context) ([]model.Lot, error) {
	query := `
		SELECT id, name, symbol, quantity, price_paid, current_price, date
		FROM lot
		ORDER BY id ASC
	`
	return r.queryLots(ctx, query)
}

// LotsBoughtOn returns the lots of symbol purchased on date, oldest first.
func (r *LotRepository) LotsBoughtOn(ctx context.Context, symbol, date string) ([]model.Lot, error) {
	query := `
		SELECT id, name, symbol, quantity, price_paid, current_price, date
		FROM lot
		WHERE symbol = ? AND date = ?
		ORDER BY id ASC
	`
	return r.queryLots(ctx, query, symbol, date)
}

func (r *LotRepository) queryLots(ctx context.Context, query string, args ...any) ([]model.Lot, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	lots := []model.Lot{}
	for rows.Next() {
		var l model.Lot
		err := rows.Scan(
			&l.ID,
			&l.Name,
			&l.Symbol,
			&l.Quantity,
			&l.PricePaid,
			&l.CurrentPrice,
			&l.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot table results: %w", err)
		}
		lots = append(lots, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot table: %w", err)
	}

	return lots, nil
}

// SetQuantity overwrites the remaining quantity of a lot.
// A lot left at zero stays in the table until DeleteZeroQuantityLots runs.
func (r *LotRepository) SetQuantity(ctx context.Context, lotID, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("%w: lot %d quantity %d", apperrors.ErrDataInconsistency, lotID, quantity)
	}

	result, err := r.getQuerier().ExecContext(ctx, `UPDATE lot SET quantity = ? WHERE id = ?`, quantity, lotID)
	if err != nil {
		return fmt.Errorf("failed to update lot quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: lot %d does not exist", apperrors.ErrDataInconsistency, lotID)
	}

	return nil
}

// DeleteZeroQuantityLots removes exhausted lots and returns how many were removed.
func (r *LotRepository) DeleteZeroQuantityLots(ctx context.Context) (int64, error) {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM lot WHERE quantity = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete exhausted lots: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// SetCurrentPrice marks every lot of symbol at price.
// A zero price means the quote was unavailable and never overwrites a known mark.
func (r *LotRepository) SetCurrentPrice(ctx context.Context, symbol string, price decimal.Decimal) (int64, error) {
	if price.IsZero() {
		return 0, nil
	}

	result, err := r.getQuerier().ExecContext(ctx, `UPDATE lot SET current_price = ? WHERE symbol = ?`, price, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to update current price: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// TotalQuantity returns the number of shares of symbol held across all lots.
func (r *LotRepository) TotalQuantity(ctx context.Context, symbol string) (int64, error) {
	var count int64
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM lot WHERE symbol = ?`, symbol,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to sum lot quantities: %w", err)
	}
	return count, nil
}

// TotalEquity returns Σ quantity × current price for symbol.
func (r *LotRepository) TotalEquity(ctx context.Context, symbol string) (decimal.Decimal, error) {
	lots, err := r.LotsFor(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return Aggregate(symbol, lots).TotalEquity, nil
}

// TotalCost returns Σ quantity × price paid for symbol.
func (r *LotRepository) TotalCost(ctx context.Context, symbol string) (decimal.Decimal, error) {
	lots, err := r.LotsFor(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return Aggregate(symbol, lots).TotalCost, nil
}

// AverageCost returns total cost divided by total quantity, or -1 when nothing is held.
func (r *LotRepository) AverageCost(ctx context.Context, symbol string) (decimal.Decimal, error) {
	lots, err := r.LotsFor(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return Aggregate(symbol, lots).AverageCost, nil
}

// TotalEquityAllSymbols returns the market value of every lot in the store.
func (r *LotRepository) TotalEquityAllSymbols(ctx context.Context) (decimal.Decimal, error) {
	lots, err := r.AllLots(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Equity())
	}
	return total, nil
}

// DistinctSymbolsOwned lists every held symbol once, ordered by its oldest remaining lot.
func (r *LotRepository) DistinctSymbolsOwned(ctx context.Context) ([]string, error) {
	query := `
		SELECT symbol
		FROM lot
		GROUP BY symbol
		ORDER BY MIN(id) ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot symbols: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan lot symbols: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot symbols: %w", err)
	}

	return symbols, nil
}

// DeleteAll removes every lot.
func (r *LotRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM lot`); err != nil {
		return fmt.Errorf("failed to clear lot table: %w", err)
	}
	return nil
}

// Aggregate folds the lots of one symbol into a Position.
// The name and current price are taken from the oldest lot.
func Aggregate(symbol string, lots []model.Lot) model.Position {
	p := model.Position{
		Symbol:       symbol,
		TotalCost:    decimal.Zero,
		TotalEquity:  decimal.Zero,
		AverageCost:  decimal.NewFromInt(-1),
		CurrentPrice: decimal.NewFromInt(-1),
		Lots:         len(lots),
	}

	for i, l := range lots {
		if i == 0 {
			p.Name = l.Name
			p.CurrentPrice = l.CurrentPrice
		}
		p.Quantity += l.Quantity
		p.TotalCost = p.TotalCost.Add(l.Cost())
		p.TotalEquity = p.TotalEquity.Add(l.Equity())
	}

	if p.Quantity > 0 {
		p.AverageCost = p.TotalCost.Div(decimal.NewFromInt(p.Quantity))
	}

	return p
}
