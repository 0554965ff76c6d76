package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// ─── Products API ───────────────────────────────────────────────────────────
//
// GET    /api/products            — list, ?category= and ?q= filters
// POST   /api/products            — create
// GET    /api/products/export.csv — catalogue as CSV
// GET    /api/products/{id}       — one product with derived status
// PUT    /api/products/{id}       — partial update
// PATCH  /api/products/{id}       — partial update
// DELETE /api/products/{id}       — delete an unreferenced product

// ProductView is a product with its derived stock status.
type ProductView struct {
	domain.Product
	Status domain.StockStatus `json:"status" csv:"status"`
}

func viewOf(p domain.Product) ProductView {
	return ProductView{Product: p, Status: p.Status()}
}

func viewsOf(products []domain.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, viewOf(p))
	}
	return views
}

// WriteProductsCSV writes products, with status, as CSV with a header row.
func WriteProductsCSV(w io.Writer, products []domain.Product) error {
	return gocsv.Marshal(viewsOf(products), w)
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func productFilter(r *http.Request) domain.ProductFilter {
	q := r.URL.Query()
	return domain.ProductFilter{
		Category: domain.Category(q.Get("category")),
		Query:    q.Get("q"),
	}
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context(), productFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(products))
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	p, err := s.products.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(*p))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(*p))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var patch domain.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	p, err := s.products.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(*p))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context(), productFilter(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	// Render fully before the first byte goes out so a failure can still
	// be reported as a JSON error.
	var buf bytes.Buffer
	if err := WriteProductsCSV(&buf, products); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		zap.L().Warn("csv export interrupted", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
