package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/request"
	"github.com/ndewijer/pocketprofit-ledger/internal/apperrors"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/testutil"
)

func buy(symbol string, quantity int64, price int64) request.BuyRequest {
	return request.BuyRequest{
		Symbol:   symbol,
		Name:     symbol + " Inc.",
		Quantity: quantity,
		Price:    decimal.NewFromInt(price),
	}
}

// TestTradeService_Buy tests market buys settled against cash.
//
// WHY: A buy is the only way cash turns into shares. It must debit exactly the
// order total, refuse orders the balance cannot cover and flag the first trade.
func TestTradeService_Buy(t *testing.T) {
	ctx := context.Background()

	t.Run("debits cash and creates a lot", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)

		// Execute
		receipt, err := svcs.Trade.Buy(ctx, buy("AAPL", 3, 100))

		// Assert
		if err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}
		testutil.AssertDecimal(t, "total", receipt.Total, "300")
		testutil.AssertDecimal(t, "cash", receipt.Cash, "14700")
		if !receipt.FirstTrade {
			t.Error("Expected first trade to be flagged")
		}
		if receipt.Transaction.Date != today {
			t.Errorf("Expected trade dated %s, got %s", today, receipt.Transaction.Date)
		}
		testutil.AssertRowCount(t, db, "lot", 1)
	})

	t.Run("second trade is not first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)

		if _, err := svcs.Trade.Buy(ctx, buy("AAPL", 1, 10)); err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}
		receipt, err := svcs.Trade.Buy(ctx, buy("AAPL", 1, 10))
		if err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}

		if receipt.FirstTrade {
			t.Error("Expected second trade not to be flagged")
		}
	})

	t.Run("rejects order above cash balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)

		_, err := svcs.Trade.Buy(ctx, buy("AAPL", 2, 10000))

		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			t.Errorf("Expected ErrInsufficientFunds, got %v", err)
		}
		testutil.AssertRowCount(t, db, "lot", 0)

		cash, err := svcs.Account.Cash(ctx)
		if err != nil {
			t.Fatalf("Cash() returned unexpected error: %v", err)
		}
		testutil.AssertDecimal(t, "cash", cash, "15000")
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)

		_, err := svcs.Trade.Buy(ctx, buy("AAPL", 0, 10))

		if !errors.Is(err, apperrors.ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("removes the symbol from the watchlist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		if _, err := svcs.Account.ToggleWatchlist(ctx, "AAPL"); err != nil {
			t.Fatalf("ToggleWatchlist() returned unexpected error: %v", err)
		}

		if _, err := svcs.Trade.Buy(ctx, buy("AAPL", 1, 10)); err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}

		watched, err := svcs.Account.OnWatchlist(ctx, "AAPL")
		if err != nil {
			t.Fatalf("OnWatchlist() returned unexpected error: %v", err)
		}
		if watched {
			t.Error("Expected AAPL to be removed from the watchlist")
		}
	})
}

// TestTradeService_Sell tests market sells settled against cash.
func TestTradeService_Sell(t *testing.T) {
	ctx := context.Background()

	t.Run("credits proceeds and records the sale", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		if _, err := svcs.Trade.Buy(ctx, buy("AAPL", 2, 10)); err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}
		if _, err := svcs.Ledger.SetCurrentPrice(ctx, "AAPL", decimal.NewFromInt(12)); err != nil {
			t.Fatalf("SetCurrentPrice() returned unexpected error: %v", err)
		}

		// Execute
		receipt, err := svcs.Trade.Sell(ctx, request.SellRequest{
			Symbol:        "AAPL",
			Name:          "Apple Inc.",
			Quantity:      1,
			Price:         decimal.NewFromInt(12),
			PreviousClose: decimal.NewFromInt(11),
		})

		// Assert
		if err != nil {
			t.Fatalf("Sell() returned unexpected error: %v", err)
		}
		testutil.AssertDecimal(t, "total", receipt.Total, "12")
		testutil.AssertDecimal(t, "cash", receipt.Cash, "14992")
		if receipt.Liquidation == nil {
			t.Fatal("Expected liquidation details")
		}
		testutil.AssertDecimal(t, "realized", receipt.Liquidation.RealizedDelta, "2")
		if receipt.Transaction.Kind != model.OrderSell {
			t.Errorf("Expected Market Sell, got %q", receipt.Transaction.Kind)
		}
		testutil.AssertRowCount(t, db, "transaction_log", 2)
	})

	t.Run("rejects sale without a position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)

		_, err := svcs.Trade.Sell(ctx, request.SellRequest{Symbol: "AAPL", Quantity: 1, Price: decimal.NewFromInt(10)})

		if !errors.Is(err, apperrors.ErrNoPosition) {
			t.Errorf("Expected ErrNoPosition, got %v", err)
		}
	})

	t.Run("rejects oversell and keeps cash", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		if _, err := svcs.Trade.Buy(ctx, buy("AAPL", 1, 10)); err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}

		_, err := svcs.Trade.Sell(ctx, request.SellRequest{Symbol: "AAPL", Quantity: 2, Price: decimal.NewFromInt(10)})

		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
		cash, err := svcs.Account.Cash(ctx)
		if err != nil {
			t.Fatalf("Cash() returned unexpected error: %v", err)
		}
		testutil.AssertDecimal(t, "cash", cash, "14990")
		testutil.AssertRowCount(t, db, "transaction_log", 1)
	})

	t.Run("requires previous close for shares bought before today", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		testutil.NewLot().WithSymbol("AAPL").WithQuantity(2).WithCurrentPrice(12).WithDate(yesterday).Build(t, db)
		if _, err := svcs.Trade.Buy(ctx, buy("AAPL", 1, 10)); err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}

		// Execute
		_, err := svcs.Trade.Sell(ctx, request.SellRequest{Symbol: "AAPL", Quantity: 1, Price: decimal.NewFromInt(12)})

		// Assert
		if !errors.Is(err, apperrors.ErrPreviousCloseRequired) {
			t.Errorf("Expected ErrPreviousCloseRequired, got %v", err)
		}
		count, err := svcs.Ledger.ShareCount(ctx, "AAPL")
		if err != nil {
			t.Fatalf("ShareCount() returned unexpected error: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3 shares held, got %d", count)
		}
		realized, err := svcs.Ledger.TodaysRealizedGain(ctx, today)
		if err != nil {
			t.Fatalf("TodaysRealizedGain() returned unexpected error: %v", err)
		}
		testutil.AssertDecimal(t, "realized", realized, "0")
		testutil.AssertRowCount(t, db, "transaction_log", 1)
	})

	t.Run("sells shares bought today without previous close", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		if _, err := svcs.Trade.Buy(ctx, buy("AAPL", 2, 10)); err != nil {
			t.Fatalf("Buy() returned unexpected error: %v", err)
		}

		// Execute
		receipt, err := svcs.Trade.Sell(ctx, request.SellRequest{Symbol: "AAPL", Quantity: 2, Price: decimal.NewFromInt(10)})

		// Assert
		if err != nil {
			t.Fatalf("Sell() returned unexpected error: %v", err)
		}
		testutil.AssertDecimal(t, "realized", receipt.Liquidation.RealizedDelta, "0")
	})
}

// TestTradeService_Grant tests free shares.
func TestTradeService_Grant(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, today, nil)

	receipt, err := svcs.Trade.Grant(ctx, request.GrantRequest{
		Symbol:   "TSLA",
		Name:     "Tesla",
		Quantity: 1,
		Price:    decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("Grant() returned unexpected error: %v", err)
	}

	testutil.AssertDecimal(t, "total", receipt.Total, "0")
	testutil.AssertDecimal(t, "cash", receipt.Cash, "15000")
	if !receipt.FirstTrade {
		t.Error("Expected first trade to be flagged")
	}

	account, err := svcs.Trade.Account(ctx)
	if err != nil {
		t.Fatalf("Account() returned unexpected error: %v", err)
	}
	testutil.AssertDecimal(t, "equity", account.Equity, "250")
	testutil.AssertDecimal(t, "portfolio value", account.PortfolioValue, "15250")
}

// TestTradeService_ResetPortfolio tests starting over.
//
// WHY: A reset must leave the account indistinguishable from a fresh one apart
// from the join date.
func TestTradeService_ResetPortfolio(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, today, nil)
	if err := svcs.Account.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() returned unexpected error: %v", err)
	}
	if _, err := svcs.Trade.Buy(ctx, buy("AAPL", 5, 10)); err != nil {
		t.Fatalf("Buy() returned unexpected error: %v", err)
	}
	if _, err := svcs.Account.ToggleWatchlist(ctx, "MSFT"); err != nil {
		t.Fatalf("ToggleWatchlist() returned unexpected error: %v", err)
	}

	account, err := svcs.Trade.ResetPortfolio(ctx)
	if err != nil {
		t.Fatalf("ResetPortfolio() returned unexpected error: %v", err)
	}

	testutil.AssertDecimal(t, "cash", account.Cash, "15000")
	if account.DateJoined != today {
		t.Errorf("Expected join date to survive reset, got %q", account.DateJoined)
	}
	testutil.AssertRowCount(t, db, "lot", 0)
	testutil.AssertRowCount(t, db, "transaction_log", 0)
	testutil.AssertRowCount(t, db, "watchlist", 0)
}

// TestTradeService_Summary tests the portfolio summary.
func TestTradeService_Summary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, today, nil)
	testutil.SetDailyPnL(t, db, yesterday, 40)
	if _, err := svcs.Trade.Buy(ctx, buy("AAPL", 2, 10)); err != nil {
		t.Fatalf("Buy() returned unexpected error: %v", err)
	}

	summary, err := svcs.Trade.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() returned unexpected error: %v", err)
	}

	if summary.Date != today {
		t.Errorf("Expected date %s, got %s", today, summary.Date)
	}
	if len(summary.Positions) != 1 {
		t.Errorf("Expected 1 position, got %d", len(summary.Positions))
	}
	testutil.AssertDecimal(t, "realized today", summary.RealizedPnLToday, "0")
	testutil.AssertDecimal(t, "portfolio value", summary.Account.PortfolioValue, "15000")
}
