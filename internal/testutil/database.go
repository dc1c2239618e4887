package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ndewijer/pocketprofit-ledger/internal/database"
	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database with the production schema.
// The pool is held to one connection, which is also what keeps the in-memory
// database alive between queries. The database is closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with every migration applied
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := database.Configure(ctx, db); err != nil {
		t.Fatalf("Failed to configure test database: %v", err)
	}

	if _, err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CleanDatabase truncates all ledger tables.
// Useful for reusing the same database across multiple subtests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []string{
		"lot",
		"transaction_log",
		"daily_pnl",
		"stock_split",
		"account_setting",
		"watchlist",
	}

	for _, table := range tables {
		//nolint:gosec // G202: Table names are from hardcoded slice, no SQL injection risk
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
//
// Example usage:
//
//	count := testutil.CountRows(t, db, "lot")
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	//nolint:gosec // G202: Table names are test constants
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "lot", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}

// CorruptLotQuantity stores a negative quantity on a lot, bypassing the CHECK constraint.
// Used to exercise the inconsistency path of liquidation.
func CorruptLotQuantity(t *testing.T, db *sql.DB, lotID, quantity int64) {
	t.Helper()

	if _, err := db.Exec("PRAGMA ignore_check_constraints = ON"); err != nil {
		t.Fatalf("Failed to disable check constraints: %v", err)
	}
	if _, err := db.Exec("UPDATE lot SET quantity = ? WHERE id = ?", quantity, lotID); err != nil {
		t.Fatalf("Failed to corrupt lot %d: %v", lotID, err)
	}
	if _, err := db.Exec("PRAGMA ignore_check_constraints = OFF"); err != nil {
		t.Fatalf("Failed to re-enable check constraints: %v", err)
	}
}
