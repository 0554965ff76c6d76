// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing
// but the decimal type used for money.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Catalog Types ──────────────────────────────────────────────────────────

// Category is the fixed product classification.
type Category string

const (
	CategoryUniform Category = "uniform"
	CategoryBook    Category = "book"
	CategoryOthers  Category = "others"
)

// Categories lists every category in display order. Summaries iterate this
// slice so empty buckets are never omitted.
var Categories = []Category{CategoryUniform, CategoryBook, CategoryOthers}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryUniform, CategoryBook, CategoryOthers:
		return true
	}
	return false
}

// Product is a stocked catalogue item. Quantity is a running counter owned by
// the accounting engine.
type Product struct {
	ID          int64           `json:"id" csv:"id"`
	Name        string          `json:"name" csv:"name"`
	Quantity    int             `json:"quantity" csv:"quantity"`
	Price       decimal.Decimal `json:"price" csv:"price"`
	Category    Category        `json:"category" csv:"category"`
	Description string          `json:"description,omitempty" csv:"description"`
	Image       string          `json:"image,omitempty" csv:"image"`
	CreatedAt   time.Time       `json:"createdAt" csv:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" csv:"-"`
}

// Status derives the stock status from the current quantity.
func (p Product) Status() StockStatus {
	return DeriveStatus(p.Quantity)
}

// ─── Ledger Types ───────────────────────────────────────────────────────────

// Sale is an append-only record of units leaving stock.
type Sale struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Date       time.Time       `json:"date"`
}

// Purchase is an append-only record of units entering stock.
type Purchase struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
	Date      time.Time       `json:"date"`
}

// LedgerFilter narrows sale/purchase listings. Zero values mean "no filter".
type LedgerFilter struct {
	ProductID int64
	Limit     int
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category Category
	Query    string // case-insensitive substring of name
}

// ─── Stock Status ───────────────────────────────────────────────────────────

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10

// MaxQuantity bounds a product's stock and any single movement. Sums over a
// catalogue of capped quantities stay well inside int64.
const MaxQuantity = 1_000_000_000

// StockStatus is derived from quantity and never stored.
type StockStatus string

const (
	StatusOut StockStatus = "OUT"
	StatusLow StockStatus = "LOW"
	StatusIn  StockStatus = "IN"
)

// DeriveStatus classifies a quantity: OUT when <= 0, LOW when below
// LowStockThreshold, IN otherwise.
func DeriveStatus(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return StatusOut
	case quantity < LowStockThreshold:
		return StatusLow
	default:
		return StatusIn
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

// User is an operator allowed to call the API.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"createdAt"`
}
