// Package dashboard folds a ledger snapshot into the dashboard summary.
package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/domain"
	"github.com/stockroom-app/stockroom/internal/infra/observability"
)

// Aggregator computes summaries from a snapshot source.
type Aggregator struct {
	src domain.SnapshotSource
}

// New creates an aggregator over src.
func New(src domain.SnapshotSource) *Aggregator {
	return &Aggregator{src: src}
}

// ComputeSummary reads one snapshot and summarizes it. Every figure in the
// result comes from that snapshot.
func (a *Aggregator) ComputeSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	snap, err := a.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger snapshot: %w", err)
	}
	summary := Summarize(snap)
	return &summary, nil
}

// RefreshGauges publishes the current inventory figures to Prometheus.
func (a *Aggregator) RefreshGauges(ctx context.Context) error {
	summary, err := a.ComputeSummary(ctx)
	if err != nil {
		return err
	}
	for _, c := range domain.Categories {
		bucket := summary.Inventory.ByCategory[c]
		observability.InventoryProducts.WithLabelValues(string(c)).Set(float64(bucket.Count))
		observability.InventoryUnits.WithLabelValues(string(c)).Set(float64(bucket.TotalUnits))
	}
	observability.LowStockProducts.Set(float64(len(summary.LowStockItems)))
	zap.L().Debug("inventory gauges refreshed",
		zap.Int("products", summary.Inventory.TotalProducts),
		zap.Int("units", summary.Inventory.TotalUnits),
		zap.Int("low_stock", len(summary.LowStockItems)))
	return nil
}

// Summarize is the pure fold behind ComputeSummary. Every category is
// present in both breakdowns, and money sums start at zero.
func Summarize(snap *domain.LedgerSnapshot) domain.DashboardSummary {
	inv := domain.InventorySummary{
		ByCategory: make(map[domain.Category]domain.CategoryStock, len(domain.Categories)),
	}
	for _, c := range domain.Categories {
		inv.ByCategory[c] = domain.CategoryStock{}
	}

	categoryOf := make(map[int64]domain.Category, len(snap.Products))
	lowStock := []domain.LowStockItem{}
	for _, p := range snap.Products {
		categoryOf[p.ID] = p.Category
		inv.TotalProducts++
		inv.TotalUnits += p.Quantity

		bucket := inv.ByCategory[p.Category]
		bucket.Count++
		bucket.TotalUnits += p.Quantity
		inv.ByCategory[p.Category] = bucket

		if p.Quantity < domain.LowStockThreshold {
			lowStock = append(lowStock, domain.LowStockItem{
				ID:       p.ID,
				Name:     p.Name,
				Quantity: p.Quantity,
				Category: p.Category,
			})
		}
	}
	sort.Slice(lowStock, func(i, j int) bool {
		if lowStock[i].Quantity != lowStock[j].Quantity {
			return lowStock[i].Quantity < lowStock[j].Quantity
		}
		return lowStock[i].ID < lowStock[j].ID
	})

	sales := domain.SalesOverview{TotalRevenue: decimal.Zero}
	byCategory := make(map[domain.Category]*domain.CategorySales, len(domain.Categories))
	for _, c := range domain.Categories {
		byCategory[c] = &domain.CategorySales{Category: c, Revenue: decimal.Zero}
	}
	for _, s := range snap.Sales {
		sales.Count++
		sales.TotalRevenue = sales.TotalRevenue.Add(s.TotalPrice)

		// Inner join: a sale whose product is absent is left out of the
		// per-category rows but still counts in the totals.
		c, ok := categoryOf[s.ProductID]
		if !ok {
			continue
		}
		if row, ok := byCategory[c]; ok {
			row.Count++
			row.Revenue = row.Revenue.Add(s.TotalPrice)
		}
	}
	for _, c := range domain.Categories {
		sales.ByCategory = append(sales.ByCategory, *byCategory[c])
	}

	purchases := domain.PurchaseOverview{TotalSpend: decimal.Zero}
	for _, p := range snap.Purchases {
		purchases.Count++
		purchases.TotalSpend = purchases.TotalSpend.Add(p.Cost)
	}

	return domain.DashboardSummary{
		Inventory:     inv,
		Sales:         sales,
		Purchases:     purchases,
		LowStockItems: lowStock,
		GeneratedAt:   snap.TakenAt,
	}
}
