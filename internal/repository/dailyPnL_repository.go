package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

// DailyPnLRepository stores the single daily realized profit/loss row.
// The table holds zero or one row; its id is pinned to 1.
type DailyPnLRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewDailyPnLRepository creates a new DailyPnLRepository with the provided database connection.
func NewDailyPnLRepository(db *sql.DB) *DailyPnLRepository {
	return &DailyPnLRepository{db: db}
}

// WithTx returns a new DailyPnLRepository scoped to the provided transaction.
func (r *DailyPnLRepository) WithTx(tx *sql.Tx) *DailyPnLRepository {
	return &DailyPnLRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *DailyPnLRepository) getQuerier() querier {
	return pick(r.db, r.tx)
}

// Get returns the stored record. The boolean is false when no record exists yet.
func (r *DailyPnLRepository) Get(ctx context.Context) (model.DailyPnL, bool, error) {
	var p model.DailyPnL
	err := r.getQuerier().QueryRowContext(ctx, `SELECT date, value FROM daily_pnl WHERE id = 1`).Scan(&p.Date, &p.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DailyPnL{}, false, nil
	}
	if err != nil {
		return model.DailyPnL{}, false, fmt.Errorf("failed to read daily_pnl: %w", err)
	}
	return p, true, nil
}

// Put creates the record or overwrites it in place.
func (r *DailyPnLRepository) Put(ctx context.Context, p model.DailyPnL) error {
	query := `
		INSERT INTO daily_pnl (id, date, value)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET date = excluded.date, value = excluded.value
	`

	if _, err := r.getQuerier().ExecContext(ctx, query, p.Date, p.Value); err != nil {
		return fmt.Errorf("failed to write daily_pnl: %w", err)
	}
	return nil
}

// Delete removes the record. Only used by a full portfolio reset.
func (r *DailyPnLRepository) Delete(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM daily_pnl`); err != nil {
		return fmt.Errorf("failed to clear daily_pnl table: %w", err)
	}
	return nil
}
