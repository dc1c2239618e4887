package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/pocketprofit-ledger/internal/api/handlers"
	"github.com/ndewijer/pocketprofit-ledger/internal/model"
	"github.com/ndewijer/pocketprofit-ledger/internal/testutil"
)

func TestLedgerHandler_Position(t *testing.T) {
	t.Run("returns aggregated position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		handler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Trade, svcs.Clock)
		testutil.NewLot().WithSymbol("AAPL").WithQuantity(2).WithPricePaid(10).Build(t, db)
		testutil.NewLot().WithSymbol("AAPL").WithQuantity(3).WithPricePaid(20).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/ledger/positions/AAPL", map[string]string{"symbol": "AAPL"})
		w := httptest.NewRecorder()

		handler.Position(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		position := testutil.DecodeJSON[model.Position](t, w)
		if position.Quantity != 5 || position.Lots != 2 {
			t.Errorf("Expected 5 shares in 2 lots, got %+v", position)
		}
		testutil.AssertDecimal(t, "average cost", position.AverageCost, "16")
	})

	t.Run("returns 404 when nothing is held", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		handler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Trade, svcs.Clock)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/ledger/positions/AAPL", map[string]string{"symbol": "AAPL"})
		w := httptest.NewRecorder()

		handler.Position(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 500 when database is closed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		handler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Trade, svcs.Clock)
		db.Close()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/ledger/positions", nil)
		w := httptest.NewRecorder()

		handler.Positions(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestLedgerHandler_PositionToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, today, nil)
	handler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Trade, svcs.Clock)
	testutil.NewLot().WithSymbol("AAPL").WithQuantity(2).WithPricePaid(10).WithDate(today).Build(t, db)
	testutil.NewLot().WithSymbol("AAPL").WithQuantity(4).WithPricePaid(9).WithDate("2024-01-01").Build(t, db)

	t.Run("defaults to today", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/ledger/positions/AAPL/today", map[string]string{"symbol": "AAPL"})
		w := httptest.NewRecorder()

		handler.PositionToday(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		body := testutil.DecodeJSON[handlers.PositionTodayResponse](t, w)
		if body.Date != today || body.SharesBought != 2 {
			t.Errorf("Expected 2 shares bought on %s, got %+v", today, body)
		}
	})

	t.Run("explicit date", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/ledger/positions/AAPL/today?date=2024-01-01", map[string]string{"symbol": "AAPL"})
		w := httptest.NewRecorder()

		handler.PositionToday(w, req)

		body := testutil.DecodeJSON[handlers.PositionTodayResponse](t, w)
		if body.SharesBought != 4 {
			t.Errorf("Expected 4 shares, got %d", body.SharesBought)
		}
	})

	t.Run("returns 400 for malformed date", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/ledger/positions/AAPL/today?date=yesterday", map[string]string{"symbol": "AAPL"})
		w := httptest.NewRecorder()

		handler.PositionToday(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

// TestLedgerHandler_RealizedPnLToday tests GET /api/ledger/pnl/today.
//
// WHY: The first read on a new trading day must report zero, not yesterday's figure.
func TestLedgerHandler_RealizedPnLToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, today, nil)
	handler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Trade, svcs.Clock)
	testutil.SetDailyPnL(t, db, "2024-01-01", 50)

	req := httptest.NewRequest(http.MethodGet, "/api/ledger/pnl/today", nil)
	w := httptest.NewRecorder()

	handler.RealizedPnLToday(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := testutil.DecodeJSON[handlers.RealizedPnLResponse](t, w)
	if body.Date != today {
		t.Errorf("Expected date %s, got %s", today, body.Date)
	}
	testutil.AssertDecimal(t, "value", body.Value, "0")
}

func TestLedgerHandler_SetMark(t *testing.T) {
	t.Run("marks lots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		handler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Trade, svcs.Clock)
		testutil.NewLot().WithSymbol("AAPL").Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/ledger/marks/AAPL", map[string]any{"price": "12.34"}, map[string]string{"symbol": "AAPL"})
		w := httptest.NewRecorder()

		handler.SetMark(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		body := testutil.DecodeJSON[handlers.SetMarkResponse](t, w)
		if body.LotsUpdated != 1 {
			t.Errorf("Expected 1 lot updated, got %d", body.LotsUpdated)
		}
	})

	t.Run("returns 400 for negative price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db, today, nil)
		handler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Trade, svcs.Clock)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/ledger/marks/AAPL", map[string]any{"price": -1}, map[string]string{"symbol": "AAPL"})
		w := httptest.NewRecorder()

		handler.SetMark(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestLedgerHandler_Summary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db, today, nil)
	handler := handlers.NewLedgerHandler(svcs.Ledger, svcs.Trade, svcs.Clock)
	testutil.NewLot().WithSymbol("AAPL").WithQuantity(2).WithCurrentPrice(50).Build(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/ledger/summary", nil)
	w := httptest.NewRecorder()

	handler.Summary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	summary := testutil.DecodeJSON[model.LedgerSummary](t, w)
	testutil.AssertDecimal(t, "equity", summary.Account.Equity, "100")
	if len(summary.Positions) != 1 {
		t.Errorf("Expected 1 position, got %d", len(summary.Positions))
	}
}
