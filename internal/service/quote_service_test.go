package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/testutil"
)

// TestQuoteService_RefreshMarks tests re-marking every held symbol.
//
// WHY: Equity is only as fresh as the marks. One failing symbol must not stop
// every other position from being updated.
func TestQuoteService_RefreshMarks(t *testing.T) {
	ctx := context.Background()

	t.Run("updates marks and reports failures", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider().
			WithQuote("AAPL", 12, 11).
			WithError("MSFT", errors.New("upstream unavailable"))
		svcs := testutil.NewTestServices(t, db, today, provider)
		testutil.NewLot().WithSymbol("AAPL").WithQuantity(2).WithPricePaid(10).WithDate(yesterday).Build(t, db)
		testutil.NewLot().WithSymbol("AAPL").WithQuantity(1).WithPricePaid(10).WithDate(today).Build(t, db)
		testutil.NewLot().WithSymbol("MSFT").WithQuantity(1).WithPricePaid(30).Build(t, db)

		// Execute
		refresh, err := svcs.Quote.RefreshMarks(ctx)

		// Assert
		if err != nil {
			t.Fatalf("RefreshMarks() returned unexpected error: %v", err)
		}
		if len(refresh.Updated) != 1 || refresh.Updated[0].Symbol != "AAPL" {
			t.Fatalf("Expected AAPL to be updated, got %+v", refresh.Updated)
		}
		if refresh.Updated[0].Lots != 2 {
			t.Errorf("Expected 2 lots re-marked, got %d", refresh.Updated[0].Lots)
		}
		// 2 older units × (12 - 11) + 1 unit bought today × (12 - 10)
		testutil.AssertDecimal(t, "day change", refresh.DayChange, "4")
		if _, ok := refresh.Failed["MSFT"]; !ok {
			t.Errorf("Expected MSFT in failures, got %v", refresh.Failed)
		}

		price, err := svcs.Ledger.CurrentPrice(ctx, "MSFT")
		if err != nil {
			t.Fatalf("CurrentPrice() returned unexpected error: %v", err)
		}
		testutil.AssertDecimal(t, "MSFT mark", price, "30")
	})

	t.Run("nothing held does nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider()
		svcs := testutil.NewTestServices(t, db, today, provider)

		refresh, err := svcs.Quote.RefreshMarks(ctx)

		if err != nil {
			t.Fatalf("RefreshMarks() returned unexpected error: %v", err)
		}
		if len(refresh.Updated) != 0 || provider.Queries() != 0 {
			t.Errorf("Expected no quotes, got %d updates and %d queries", len(refresh.Updated), provider.Queries())
		}
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewMockQuoteProvider().WithError("AAPL", context.Canceled)
		svcs := testutil.NewTestServices(t, db, today, provider)
		testutil.NewLot().WithSymbol("AAPL").Build(t, db)

		_, err := svcs.Quote.RefreshMarks(ctx)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestQuoteService_Quote(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	provider := testutil.NewMockQuoteProvider().WithQuote("AAPL", 190, 188)
	svcs := testutil.NewTestServices(t, db, today, provider)

	t.Run("returns provider quote", func(t *testing.T) {
		q, err := svcs.Quote.Quote(ctx, "AAPL")
		if err != nil {
			t.Fatalf("Quote() returned unexpected error: %v", err)
		}
		testutil.AssertDecimal(t, "price", q.CurrentPrice, "190")
	})

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := svcs.Quote.Quote(ctx, "NOPE")
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected ErrSymbolNotFound, got %v", err)
		}
	})
}

func TestQuoteService_DayChange(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, today, nil)
	testutil.NewLot().WithSymbol("AAPL").WithQuantity(3).WithPricePaid(10).WithDate(yesterday).Build(t, db)

	change, err := svcs.Quote.DayChange(ctx, "AAPL", decimal.NewFromInt(9), decimal.NewFromInt(10), today)
	if err != nil {
		t.Fatalf("DayChange() returned unexpected error: %v", err)
	}
	testutil.AssertDecimal(t, "day change", change, "-3")
}

// TestQuoteService_DayChangeLargePosition tests the day change of a position at the share limit.
//
// WHY: The day change runs on every scheduled refresh. It has to be computed per
// lot, not per unit, or a large position costs memory proportional to its size.
func TestQuoteService_DayChangeLargePosition(t *testing.T) {
	// Setup
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, today, nil)
	testutil.NewLot().WithSymbol("AAPL").WithQuantity(3).WithPricePaid(10).WithDate(yesterday).Build(t, db)
	testutil.NewLot().WithSymbol("AAPL").WithQuantity(model.MaxPositionQuantity - 3).WithPricePaid(10).WithDate(today).Build(t, db)

	// Execute
	change, err := svcs.Quote.DayChange(ctx, "AAPL", decimal.NewFromInt(12), decimal.NewFromInt(11), today)

	// Assert
	if err != nil {
		t.Fatalf("DayChange() returned unexpected error: %v", err)
	}
	// 3 older units × (12 - 11) + 999997 units bought today × (12 - 10)
	testutil.AssertDecimal(t, "day change", change, "1999997")
}

// TestQuoteService_SharedLookup tests callers joined to one in-flight quote lookup.
//
// WHY: A client hanging up on a quote request must not abort a scheduled mark
// refresh that waits on the same upstream lookup.
func TestQuoteService_SharedLookup(t *testing.T) {
	// Setup
	db := testutil.SetupTestDB(t)
	provider := testutil.NewMockQuoteProvider().WithQuote("AAPL", 12, 11)
	svcs := testutil.NewTestServices(t, db, today, provider)
	testutil.NewLot().WithSymbol("AAPL").WithQuantity(2).WithPricePaid(10).WithDate(yesterday).Build(t, db)

	entered, release := provider.Hold("AAPL")
	defer release()

	clientCtx, cancelClient := context.WithCancel(context.Background())
	defer cancelClient()
	clientErr := make(chan error, 1)
	go func() {
		_, err := svcs.Quote.Quote(clientCtx, "AAPL")
		clientErr <- err
	}()
	<-entered

	type refreshResult struct {
		refresh model.MarkRefresh
		err     error
	}
	refreshed := make(chan refreshResult, 1)
	go func() {
		refresh, err := svcs.Quote.RefreshMarks(context.Background())
		refreshed <- refreshResult{refresh, err}
	}()

	// Execute
	cancelClient()
	err := <-clientErr
	release()
	res := <-refreshed

	// Assert
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the cancelled caller to get context.Canceled, got %v", err)
	}
	if res.err != nil {
		t.Fatalf("RefreshMarks() returned unexpected error: %v", res.err)
	}
	if len(res.refresh.Updated) != 1 {
		t.Fatalf("Expected AAPL to be updated, got %+v (failed %v)", res.refresh.Updated, res.refresh.Failed)
	}
	testutil.AssertDecimal(t, "day change", res.refresh.DayChange, "2")
}

// TestQuoteService_QuoteCancelled tests a lookup with a context that is already done.
func TestQuoteService_QuoteCancelled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := testutil.NewMockQuoteProvider().WithQuote("AAPL", 12, 11)
	svcs := testutil.NewTestServices(t, db, today, provider)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svcs.Quote.Quote(ctx, "AAPL")

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if provider.Queries() != 0 {
		t.Errorf("Expected no upstream lookup, got %d", provider.Queries())
	}
}
