package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys of the account_setting table.
const (
	SettingCash       = "cash"
	SettingDateJoined = "date_joined"
)

// AccountRepository provides data access for the cash balance, the join date and the watchlist.
type AccountRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a new AccountRepository scoped to the provided transaction.
func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *AccountRepository) getQuerier() querier {
	return pick(r.db, r.tx)
}

// GetSetting returns the value stored under key. The boolean is false when the key is unset.
func (r *AccountRepository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.getQuerier().QueryRowContext(ctx, `SELECT value FROM account_setting WHERE "key" = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

// PutSetting creates or overwrites the value stored under key.
func (r *AccountRepository) PutSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO account_setting ("key", value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT("key") DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.getQuerier().ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// PutSettingIfAbsent stores value under key only when the key is unset.
func (r *AccountRepository) PutSettingIfAbsent(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO account_setting ("key", value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT("key") DO NOTHING
	`
	if _, err := r.getQuerier().ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// Watchlist returns the watched symbols in alphabetical order.
func (r *AccountRepository) Watchlist(ctx context.Context) ([]string, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT symbol FROM watchlist ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist table: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist table results: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist table: %w", err)
	}

	return symbols, nil
}

// OnWatchlist reports whether symbol is watched.
func (r *AccountRepository) OnWatchlist(ctx context.Context, symbol string) (bool, error) {
	var count int
	if err := r.getQuerier().QueryRowContext(ctx, `SELECT COUNT(*) FROM watchlist WHERE symbol = ?`, symbol).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query watchlist table: %w", err)
	}
	return count > 0, nil
}

// AddToWatchlist watches symbol. Adding a watched symbol is a no-op.
func (r *AccountRepository) AddToWatchlist(ctx context.Context, symbol string) error {
	if _, err := r.getQuerier().ExecContext(ctx, `INSERT INTO watchlist (symbol) VALUES (?) ON CONFLICT(symbol) DO NOTHING`, symbol); err != nil {
		return fmt.Errorf("failed to insert watchlist symbol: %w", err)
	}
	return nil
}

// RemoveFromWatchlist stops watching symbol.
func (r *AccountRepository) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol); err != nil {
		return fmt.Errorf("failed to delete watchlist symbol: %w", err)
	}
	return nil
}

// ClearWatchlist removes every watched symbol.
func (r *AccountRepository) ClearWatchlist(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("failed to clear watchlist table: %w", err)
	}
	return nil
}
