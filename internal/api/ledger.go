package api

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// ─── Ledger API ─────────────────────────────────────────────────────────────
//
// GET  /api/sales      — newest first, ?productId= and ?limit=
// POST /api/sales      — {productId, quantity, totalPrice}
// GET  /api/purchases  — newest first, ?productId= and ?limit=
// POST /api/purchases  — {productId, quantity, cost}
// GET  /api/dashboard  — inventory, sales, purchases and low-stock summary

type saleRequest struct {
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type purchaseRequest struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
}

func ledgerFilter(r *http.Request) (domain.LedgerFilter, bool) {
	var f domain.LedgerFilter
	q := r.URL.Query()
	if v := q.Get("productId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, false
		}
		f.ProductID = id
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, false
		}
		f.Limit = n
	}
	return f, true
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	sale, err := s.ledger.RecordSale(r.Context(), req.ProductID, req.Quantity, req.TotalPrice)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	purchase, err := s.ledger.RecordPurchase(r.Context(), req.ProductID, req.Quantity, req.Cost)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	f, ok := ledgerFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid productId or limit")
		return
	}
	sales, err := s.ledger.ListSales(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	f, ok := ledgerFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid productId or limit")
		return
	}
	purchases, err := s.ledger.ListPurchases(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.ComputeSummary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
