// Package api provides the HTTP server for stockroom.
// It exposes the product catalogue, the sale/purchase ledger and the
// dashboard summary as JSON under /api.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/app/accounting"
	"github.com/stockroom-app/stockroom/internal/app/auth"
	"github.com/stockroom-app/stockroom/internal/app/catalog"
	"github.com/stockroom-app/stockroom/internal/app/dashboard"
	"github.com/stockroom-app/stockroom/internal/infra/logging"
	"github.com/stockroom-app/stockroom/internal/infra/observability"
)

func init() {
	// Money goes over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Server is the stockroom HTTP API server.
type Server struct {
	products  *catalog.Service
	ledger    *accounting.Engine
	dashboard *dashboard.Aggregator

	issuer         *auth.Issuer // nil when authentication is disabled
	metricsEnabled bool
	allowedOrigins []string
	timeout        time.Duration
	logger         *zap.Logger
}

// NewServer creates a new API server.
func NewServer(products *catalog.Service, ledger *accounting.Engine, dash *dashboard.Aggregator) *Server {
	return &Server{
		products:       products,
		ledger:         ledger,
		dashboard:      dash,
		allowedOrigins: []string{"*"},
		timeout:        30 * time.Second,
		logger:         zap.L(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// EnableAuth requires a bearer token on every /api route except /api/token.
func (s *Server) EnableAuth(issuer *auth.Issuer) { s.issuer = issuer }

// SetAllowedOrigins sets the CORS origins. "*" allows any.
func (s *Server) SetAllowedOrigins(origins []string) { s.allowedOrigins = origins }

// SetTimeout sets the per-request deadline.
func (s *Server) SetTimeout(d time.Duration) { s.timeout = d }

// SetLogger replaces the request logger.
func (s *Server) SetLogger(l *zap.Logger) { s.logger = l }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(s.corsMiddleware)
	r.Use(observability.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		if s.issuer != nil {
			r.Post("/token", s.handleToken)
		}

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			if s.issuer != nil {
				r.Get("/users/me", s.handleMe)
			}

			r.Route("/products", func(r chi.Router) {
				r.Get("/", s.handleListProducts)
				r.Post("/", s.handleCreateProduct)
				r.Get("/export.csv", s.handleExportProducts)
				r.Get("/{id}", s.handleGetProduct)
				r.Put("/{id}", s.handleUpdateProduct)
				r.Patch("/{id}", s.handleUpdateProduct)
				r.Delete("/{id}", s.handleDeleteProduct)
			})

			r.Get("/sales", s.handleListSales)
			r.Post("/sales", s.handleRecordSale)
			r.Get("/purchases", s.handleListPurchases)
			r.Post("/purchases", s.handleRecordPurchase)

			r.Get("/dashboard", s.handleDashboard)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeErrorType(w, status, msg, "error")
}

func writeErrorType(w http.ResponseWriter, status int, msg, typ string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    typ,
		},
	})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// corsMiddleware adds CORS headers for the dashboard frontend.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	for _, o := range s.allowedOrigins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
