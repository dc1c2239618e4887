package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from metrics handler, got %d", w.Code)
	}
	return w.Body.String()
}

// TestMiddleware tests that requests are labelled by route pattern, not raw path.
func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/ledger/positions/{symbol}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, symbol := range []string{"AAPL", "MSFT"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ledger/positions/"+symbol, nil))
		if w.Code != http.StatusTeapot {
			t.Fatalf("Expected 418, got %d", w.Code)
		}
	}

	body := scrape(t)
	want := `pocketprofit_http_requests_total{method="GET",path="/api/ledger/positions/{symbol}",status="418"} 2`
	if !strings.Contains(body, want) {
		t.Errorf("Expected %q in exposition", want)
	}
	if strings.Contains(body, `path="/api/ledger/positions/AAPL"`) {
		t.Error("Expected raw paths not to be used as labels")
	}
}

func TestHandler(t *testing.T) {
	OrdersTotal.WithLabelValues("Market Buy").Inc()

	if !strings.Contains(scrape(t), "pocketprofit_orders_total") {
		t.Error("Expected orders counter in exposition")
	}
}
