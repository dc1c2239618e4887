package repository_test

import (
	"context"
	"testing"

	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/repository"
	"github.com/ndewijer/pocketprofit-ledger/internal/testutil"
)

func TestTransactionRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)

	first := testutil.NewTransaction().WithSymbol("AAPL").WithPrice(187.5).Build(t, db)
	second := testutil.NewTransaction().WithSymbol("AAPL").WithKind(model.OrderSell).Build(t, db)
	testutil.NewTransaction().WithSymbol("MSFT").Build(t, db)

	t.Run("order ids are unique", func(t *testing.T) {
		if first.OrderID == second.OrderID {
			t.Errorf("Expected distinct order ids, got %s twice", first.OrderID)
		}
	})

	t.Run("symbol listing is newest first", func(t *testing.T) {
		records, err := repo.AllForSymbol(ctx, "AAPL")
		if err != nil {
			t.Fatalf("AllForSymbol() returned unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(records))
		}
		if records[0].ID != second.ID {
			t.Errorf("Expected record %d first, got %d", second.ID, records[0].ID)
		}
		testutil.AssertDecimal(t, "price", records[1].Price, "187.5")
	})

	t.Run("count", func(t *testing.T) {
		all, err := repo.Count(ctx, "")
		if err != nil {
			t.Fatalf("Count() returned unexpected error: %v", err)
		}
		msft, err := repo.Count(ctx, "MSFT")
		if err != nil {
			t.Fatalf("Count() returned unexpected error: %v", err)
		}
		if all != 3 || msft != 1 {
			t.Errorf("Expected counts 3 and 1, got %d and %d", all, msft)
		}
	})

	t.Run("delete all", func(t *testing.T) {
		if err := repo.DeleteAll(ctx); err != nil {
			t.Fatalf("DeleteAll() returned unexpected error: %v", err)
		}
		testutil.AssertRowCount(t, db, "transaction_log", 0)
	})
}
