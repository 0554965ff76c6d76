package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/products/{id}", "418"))

	for _, path := range []string{"/api/products/1", "/api/products/2"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/products/{id}", "418"))
	if after-before != 2 {
		t.Errorf("requests counted = %v, want 2", after-before)
	}
}

func TestMiddleware_DefaultStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/health", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/health", "200"))

	if after-before != 1 {
		t.Errorf("requests counted = %v, want 1", after-before)
	}
}

func TestLedgerCollectors_Labels(t *testing.T) {
	SalesRecorded.WithLabelValues("book").Inc()
	AccountingRejections.WithLabelValues("sale", "insufficient_stock").Inc()
	InventoryUnits.WithLabelValues("book").Set(250)

	if got := testutil.ToFloat64(InventoryUnits.WithLabelValues("book")); got != 250 {
		t.Errorf("InventoryUnits{book} = %v, want 250", got)
	}
	if got := testutil.ToFloat64(AccountingRejections.WithLabelValues("sale", "insufficient_stock")); got < 1 {
		t.Errorf("AccountingRejections = %v, want >= 1", got)
	}
}
