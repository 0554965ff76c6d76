package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Dashboard Types ────────────────────────────────────────────────────────

// LedgerSnapshot is every product, sale and purchase as of one instant.
type LedgerSnapshot struct {
	Products  []Product
	Sales     []Sale
	Purchases []Purchase
	TakenAt   time.Time
}

// DashboardSummary is the read-only aggregate served by /api/dashboard.
type DashboardSummary struct {
	Inventory     InventorySummary `json:"inventorySummary"`
	Sales         SalesOverview    `json:"salesOverview"`
	Purchases     PurchaseOverview `json:"purchaseOverview"`
	LowStockItems []LowStockItem   `json:"lowStockItems"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

// InventorySummary counts products and units, overall and per category.
type InventorySummary struct {
	TotalProducts int                        `json:"totalProducts"`
	TotalUnits    int                        `json:"totalUnits"`
	ByCategory    map[Category]CategoryStock `json:"byCategory"`
}

// CategoryStock is one bucket of the per-category breakdown.
type CategoryStock struct {
	Count      int `json:"count"`
	TotalUnits int `json:"totalUnits"`
}

// SalesOverview totals sale records.
type SalesOverview struct {
	Count        int             `json:"count"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	ByCategory   []CategorySales `json:"byCategory"`
}

// CategorySales groups sales by the category of the product sold.
type CategorySales struct {
	Category Category        `json:"category"`
	Count    int             `json:"count"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// PurchaseOverview totals purchase records.
type PurchaseOverview struct {
	Count      int             `json:"count"`
	TotalSpend decimal.Decimal `json:"totalSpend"`
}

// LowStockItem is a product whose quantity is below LowStockThreshold.
type LowStockItem struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Category Category `json:"category"`
}
