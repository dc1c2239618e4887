// Package metrics provides Prometheus instrumentation for the ledger service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersTotal counts filled orders, partitioned by order kind.
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketprofit_orders_total",
		Help: "Total number of orders filled",
	}, []string{"kind"})

	// OrderRejections counts orders refused by a business rule.
	OrderRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketprofit_order_rejections_total",
		Help: "Orders rejected before any state change",
	}, []string{"reason"})

	// SharesLiquidated counts shares consumed from lots by FIFO sales.
	SharesLiquidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketprofit_shares_liquidated_total",
		Help: "Shares removed from lots by liquidations",
	})

	// LotsConsumed counts lots touched by liquidations.
	LotsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketprofit_lots_consumed_total",
		Help: "Lots touched by liquidations",
	})

	// RealizedPnLToday mirrors the daily realized P&L record after every update.
	RealizedPnLToday = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pocketprofit_realized_pnl_today",
		Help: "Realized profit/loss of the current trading day",
	})

	// LedgerInconsistencies counts invariant violations found in stored lots.
	LedgerInconsistencies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketprofit_ledger_inconsistencies_total",
		Help: "Ledger invariant violations detected",
	})

	// QuoteRefreshDuration tracks how long a full mark refresh takes.
	QuoteRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pocketprofit_quote_refresh_duration_seconds",
		Help:    "Mark refresh duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// QuoteFailures counts quote lookups that returned an error.
	QuoteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketprofit_quote_failures_total",
		Help: "Quote lookups that failed",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketprofit_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pocketprofit_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern labels by chi route pattern (/api/ledger/positions/{symbol}) so
// symbols do not blow up label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
