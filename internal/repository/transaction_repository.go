package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
)

// TransactionRepository provides data access methods for the transaction_log table.
// The log is append-only: records are never updated and only removed by a full reset.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	return pick(r.db, r.tx)
}

// Append writes a new record and returns it with its ID and order ID filled in.
func (r *TransactionRepository) Append(ctx context.Context, t model.TransactionRecord) (model.TransactionRecord, error) {
	query := `
		INSERT INTO transaction_log (order_id, name, symbol, order_type, quantity, price, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if t.OrderID == "" {
		t.OrderID = uuid.New().String()
	}

	result, err := r.getQuerier().ExecContext(ctx, query,
		t.OrderID,
		t.Name,
		t.Symbol,
		string(t.Kind),
		t.Quantity,
		t.Price,
		t.Date,
	)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	t.ID, err = result.LastInsertId()
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("failed to read transaction id: %w", err)
	}

	return t, nil
}

// All returns the complete log, newest first.
func (r *TransactionRepository) All(ctx context.Context) ([]model.TransactionRecord, error) {
	query := `
		SELECT id, order_id, name, symbol, order_type, quantity, price, date
		FROM transaction_log
		ORDER BY id DESC
	`
	return r.queryTransactions(ctx, query)
}

// AllForSymbol returns the records of one symbol, newest first.
func (r *TransactionRepository) AllForSymbol(ctx context.Context, symbol string) ([]model.TransactionRecord, error) {
	query := `
		SELECT id, order_id, name, symbol, order_type, quantity, price, date
		FROM transaction_log
		WHERE symbol = ?
		ORDER BY id DESC
	`
	return r.queryTransactions(ctx, query, symbol)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]model.TransactionRecord, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction_log table: %w", err)
	}
	defer rows.Close()

	transactions := []model.TransactionRecord{}
	for rows.Next() {
		var t model.TransactionRecord
		var kind string

		err := rows.Scan(
			&t.ID,
			&t.OrderID,
			&t.Name,
			&t.Symbol,
			&kind,
			&t.Quantity,
			&t.Price,
			&t.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction_log table results: %w", err)
		}
		t.Kind = model.OrderKind(kind)

		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction_log table: %w", err)
	}

	return transactions, nil
}

// Count returns the number of records, optionally restricted to one symbol.
func (r *TransactionRepository) Count(ctx context.Context, symbol string) (int64, error) {
	query := `SELECT COUNT(*) FROM transaction_log`
	var args []any
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}

	var count int64
	if err := r.getQuerier().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// DeleteAll removes every record. Only used by a full portfolio reset.
func (r *TransactionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM transaction_log`); err != nil {
		return fmt.Errorf("failed to clear transaction_log table: %w", err)
	}
	return nil
}
