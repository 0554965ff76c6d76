// Package observability holds the Prometheus collectors for stockroom and the
// chi middleware that feeds the HTTP ones.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// SalesRecorded counts committed sales by product category.
var SalesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "stockroom",
	Subsystem: "ledger",
	Name:      "sales_total",
	Help:      "Total sales committed, by product category.",
}, []string{"category"})

// PurchasesRecorded counts committed purchases by product category.
var PurchasesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "stockroom",
	Subsystem: "ledger",
	Name:      "purchases_total",
	Help:      "Total purchases committed, by product category.",
}, []string{"category"})

// UnitsMoved counts units leaving (out) and entering (in) stock.
var UnitsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "stockroom",
	Subsystem: "ledger",
	Name:      "units_moved_total",
	Help:      "Total units moved through sales (out) and purchases (in).",
}, []string{"direction"})

// AccountingRejections counts refused sales and purchases by reason.
var AccountingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "stockroom",
	Subsystem: "ledger",
	Name:      "rejections_total",
	Help:      "Total sales and purchases rejected, by operation and reason.",
}, []string{"op", "reason"})

// ─── Inventory Gauges ───────────────────────────────────────────────────────

// InventoryUnits is the on-hand quantity per category at the last refresh.
var InventoryUnits = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "stockroom",
	Subsystem: "inventory",
	Name:      "units",
	Help:      "Units on hand per category at the last refresh.",
}, []string{"category"})

// InventoryProducts is the product count per category at the last refresh.
var InventoryProducts = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "stockroom",
	Subsystem: "inventory",
	Name:      "products",
	Help:      "Products per category at the last refresh.",
}, []string{"category"})

// LowStockProducts is the number of products below the low-stock threshold.
var LowStockProducts = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "stockroom",
	Subsystem: "inventory",
	Name:      "low_stock_products",
	Help:      "Products whose quantity is below the low-stock threshold.",
})

// ─── HTTP Metrics ───────────────────────────────────────────────────────────

// HTTPRequests counts handled requests by route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "stockroom",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by method, route and status.",
}, []string{"method", "route", "status"})

// HTTPLatency tracks handler latency in milliseconds.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "stockroom",
	Subsystem: "http",
	Name:      "latency_ms",
	Help:      "HTTP handler latency in milliseconds.",
	Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
}, []string{"method", "route"})

// Middleware records HTTPRequests and HTTPLatency. The route label is the chi
// pattern, not the raw path, so ids don't explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPLatency.WithLabelValues(r.Method, route).
			Observe(float64(time.Since(start).Microseconds()) / 1000)
	})
}
