package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DateLayout is the calendar-day key used for every date column of the ledger.
const DateLayout = "2006-01-02"

// DateKey returns the calendar day of t in loc as a ledger date key.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDate validates a ledger date key.
func ParseDate(str string) (time.Time, error) {
	date, err := time.Parse(DateLayout, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
	}
	return date, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// pick returns the transaction when one is set, the pool otherwise.
func pick(db *sql.DB, tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return db
}
