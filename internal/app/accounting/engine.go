// Package accounting records sales and purchases and keeps each product's
// quantity equal to its starting stock plus purchases minus sales.
//
// Every movement runs in one exclusive store transaction:
//  1. Check the amounts (quantity in 1..MaxQuantity, non-negative money)
//  2. Load the product
//  3. Refuse a sale that would go below zero or a purchase past MaxQuantity
//  4. Adjust the quantity and append the ledger row
package accounting

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/domain"
	"github.com/stockroom-app/stockroom/internal/infra/observability"
)

const (
	opSale     = "sale"
	opPurchase = "purchase"
)

// Engine is the only writer of product quantities once a product exists.
type Engine struct {
	store domain.LedgerStore
}

// New creates an accounting engine over store.
func New(store domain.LedgerStore) *Engine {
	return &Engine{store: store}
}

// RecordSale removes quantity units of a product from stock and appends a
// sale row. On any error nothing is written.
func (e *Engine) RecordSale(ctx context.Context, productID int64, quantity int, totalPrice decimal.Decimal) (*domain.Sale, error) {
	if !validMovement(quantity, totalPrice) {
		return nil, e.reject(opSale, productID, domain.ErrInvalidAmount)
	}

	sale := &domain.Sale{ProductID: productID, Quantity: quantity, TotalPrice: totalPrice}
	var category domain.Category
	err := e.store.InTx(ctx, func(tx domain.LedgerTx) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if p.Quantity < quantity {
			return domain.ErrInsufficientStock
		}
		if err := tx.AdjustQuantity(ctx, productID, -quantity); err != nil {
			return err
		}
		category = p.Category
		return tx.InsertSale(ctx, sale)
	})
	if err != nil {
		return nil, e.reject(opSale, productID, err)
	}

	observability.SalesRecorded.WithLabelValues(string(category)).Inc()
	observability.UnitsMoved.WithLabelValues("out").Add(float64(quantity))
	zap.L().Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("total_price", totalPrice.String()))
	return sale, nil
}

// RecordPurchase adds quantity units of a product to stock and appends a
// purchase row.
func (e *Engine) RecordPurchase(ctx context.Context, productID int64, quantity int, cost decimal.Decimal) (*domain.Purchase, error) {
	if !validMovement(quantity, cost) {
		return nil, e.reject(opPurchase, productID, domain.ErrInvalidAmount)
	}

	purchase := &domain.Purchase{ProductID: productID, Quantity: quantity, Cost: cost}
	var category domain.Category
	err := e.store.InTx(ctx, func(tx domain.LedgerTx) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if p.Quantity > domain.MaxQuantity-quantity {
			return domain.ErrStockLimit
		}
		if err := tx.AdjustQuantity(ctx, productID, quantity); err != nil {
			return err
		}
		category = p.Category
		return tx.InsertPurchase(ctx, purchase)
	})
	if err != nil {
		return nil, e.reject(opPurchase, productID, err)
	}

	observability.PurchasesRecorded.WithLabelValues(string(category)).Inc()
	observability.UnitsMoved.WithLabelValues("in").Add(float64(quantity))
	zap.L().Info("purchase recorded",
		zap.Int64("purchase_id", purchase.ID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("cost", cost.String()))
	return purchase, nil
}

// ListSales returns sales newest first.
func (e *Engine) ListSales(ctx context.Context, f domain.LedgerFilter) ([]domain.Sale, error) {
	return e.store.ListSales(ctx, f)
}

// ListPurchases returns purchases newest first.
func (e *Engine) ListPurchases(ctx context.Context, f domain.LedgerFilter) ([]domain.Purchase, error) {
	return e.store.ListPurchases(ctx, f)
}

func validMovement(quantity int, amount decimal.Decimal) bool {
	return quantity > 0 && quantity <= domain.MaxQuantity && !amount.IsNegative()
}

// reject counts and logs a refused movement and wraps err for the caller.
func (e *Engine) reject(op string, productID int64, err error) error {
	reason := rejectionReason(err)
	observability.AccountingRejections.WithLabelValues(op, reason).Inc()

	if reason == "store_error" {
		zap.L().Error("ledger write failed",
			zap.String("op", op), zap.Int64("product_id", productID), zap.Error(err))
	} else {
		zap.L().Debug("movement rejected",
			zap.String("op", op), zap.Int64("product_id", productID), zap.String("reason", reason))
	}
	return &domain.AccountingError{Op: op, ProductID: productID, Err: err}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrStockLimit):
		return "stock_limit"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "store_error"
	}
}
