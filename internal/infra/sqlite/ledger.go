package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// ─── Sale / Purchase Operations ─────────────────────────────────────────────
// Rows are append-only: there is no update or delete path.

func insertSale(ctx context.Context, q queryer, s *domain.Sale) error {
	if s.Date.IsZero() {
		s.Date = time.Now().UTC()
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO sales (product_id, quantity, total_price, date)
		VALUES (?, ?, ?, ?)
	`, s.ProductID, s.Quantity, s.TotalPrice, formatTime(s.Date))
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	s.ID, err = res.LastInsertId()
	return err
}

func insertPurchase(ctx context.Context, q queryer, p *domain.Purchase) error {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO purchases (product_id, quantity, cost, date)
		VALUES (?, ?, ?, ?)
	`, p.ProductID, p.Quantity, p.Cost, formatTime(p.Date))
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

// ledgerQuery builds a newest-first listing with the optional filter.
func ledgerQuery(base string, f domain.LedgerFilter) (string, []any) {
	var args []any
	if f.ProductID > 0 {
		base += " WHERE product_id = ?"
		args = append(args, f.ProductID)
	}
	base += " ORDER BY id DESC"
	if f.Limit > 0 {
		base += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return base, args
}

func listSales(ctx context.Context, q queryer, f domain.LedgerFilter) ([]domain.Sale, error) {
	query, args := ledgerQuery(`SELECT id, product_id, quantity, total_price, date FROM sales`, f)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []domain.Sale
	for rows.Next() {
		var (
			s    domain.Sale
			date string
		)
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Quantity, &s.TotalPrice, &date); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if s.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("sale %d date: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func listPurchases(ctx context.Context, q queryer, f domain.LedgerFilter) ([]domain.Purchase, error) {
	query, args := ledgerQuery(`SELECT id, product_id, quantity, cost, date FROM purchases`, f)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		var (
			p    domain.Purchase
			date string
		)
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Quantity, &p.Cost, &date); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		if p.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("purchase %d date: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListSales returns sales newest first.
func (db *DB) ListSales(ctx context.Context, f domain.LedgerFilter) ([]domain.Sale, error) {
	return listSales(ctx, db.db, f)
}

// ListPurchases returns purchases newest first.
func (db *DB) ListPurchases(ctx context.Context, f domain.LedgerFilter) ([]domain.Purchase, error) {
	return listPurchases(ctx, db.db, f)
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

// Snapshot reads products, sales and purchases inside one transaction so
// the three lists describe the same instant. A read-only tx begins DEFERRED,
// so under WAL it never waits on or blocks a concurrent movement.
func (db *DB) Snapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	tx, err := db.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	snap := &domain.LedgerSnapshot{TakenAt: time.Now().UTC()}
	if snap.Products, err = listProducts(ctx, tx, domain.ProductFilter{}); err != nil {
		return nil, err
	}
	if snap.Sales, err = listSales(ctx, tx, domain.LedgerFilter{}); err != nil {
		return nil, err
	}
	if snap.Purchases, err = listPurchases(ctx, tx, domain.LedgerFilter{}); err != nil {
		return nil, err
	}
	return snap, tx.Commit()
}

// ─── Transaction View ───────────────────────────────────────────────────────

// ledgerTx adapts *sql.Tx to domain.LedgerTx.
type ledgerTx struct {
	tx *sql.Tx
}

func (t *ledgerTx) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return getProduct(ctx, t.tx, id)
}

func (t *ledgerTx) AdjustQuantity(ctx context.Context, id int64, delta int) error {
	return adjustQuantity(ctx, t.tx, id, delta)
}

func (t *ledgerTx) InsertSale(ctx context.Context, s *domain.Sale) error {
	return insertSale(ctx, t.tx, s)
}

func (t *ledgerTx) InsertPurchase(ctx context.Context, p *domain.Purchase) error {
	return insertPurchase(ctx, t.tx, p)
}

func (t *ledgerTx) InsertProduct(ctx context.Context, p *domain.Product) error {
	return insertProduct(ctx, t.tx, p)
}

func (t *ledgerTx) UpdateProduct(ctx context.Context, p *domain.Product) error {
	return updateProduct(ctx, t.tx, p)
}

func (t *ledgerTx) DeleteProduct(ctx context.Context, id int64) error {
	return deleteProduct(ctx, t.tx, id)
}

func (t *ledgerTx) LedgerRefs(ctx context.Context, id int64) (int, error) {
	return ledgerRefs(ctx, t.tx, id)
}
