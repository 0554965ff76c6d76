package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// ─── Product Operations ─────────────────────────────────────────────────────

const productColumns = `id, name, quantity, price, category, description, image, created_at, updated_at`

func scanProduct(s scanner) (*domain.Product, error) {
	var (
		p                domain.Product
		category         string
		created, updated string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &category,
		&p.Description, &p.Image, &created, &updated); err != nil {
		return nil, err
	}
	p.Category = domain.Category(category)
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("product %d created_at: %w", p.ID, err)
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("product %d updated_at: %w", p.ID, err)
	}
	return &p, nil
}

func getProduct(ctx context.Context, q queryer, id int64) (*domain.Product, error) {
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func listProducts(ctx context.Context, q queryer, f domain.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(s)+"%")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func insertProduct(ctx context.Context, q queryer, p *domain.Product) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	res, err := q.ExecContext(ctx, `
		INSERT INTO products (name, quantity, price, category, description, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Quantity, p.Price, string(p.Category), p.Description, p.Image,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

// updateProduct rewrites every editable column. created_at is never touched.
func updateProduct(ctx context.Context, q queryer, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, `
		UPDATE products SET
			name        = ?,
			quantity    = ?,
			price       = ?,
			category    = ?,
			description = ?,
			image       = ?,
			updated_at  = ?
		WHERE id = ?
	`, p.Name, p.Quantity, p.Price, string(p.Category), p.Description, p.Image,
		formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return expectOneRow(res, domain.ErrProductNotFound)
}

func deleteProduct(ctx context.Context, q queryer, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return expectOneRow(res, domain.ErrProductNotFound)
}

// adjustQuantity applies delta only if the result stays within
// [0, domain.MaxQuantity]. Zero affected rows means the product is gone or
// the bound would be crossed.
func adjustQuantity(ctx context.Context, q queryer, id int64, delta int) error {
	res, err := q.ExecContext(ctx, `
		UPDATE products SET quantity = quantity + ?, updated_at = ?
		WHERE id = ? AND quantity + ? BETWEEN 0 AND ?
	`, delta, formatTime(time.Now()), id, delta, domain.MaxQuantity)
	if err != nil {
		return fmt.Errorf("adjust quantity of product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := getProduct(ctx, q, id); err != nil {
		return err
	}
	if delta > 0 {
		return domain.ErrStockLimit
	}
	return domain.ErrInsufficientStock
}

func ledgerRefs(ctx context.Context, q queryer, id int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM sales WHERE product_id = ?)
		     + (SELECT COUNT(*) FROM purchases WHERE product_id = ?)
	`, id, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ledger refs of product %d: %w", id, err)
	}
	return n, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// GetProduct reads one product outside any transaction.
func (db *DB) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return getProduct(ctx, db.db, id)
}

// ListProducts returns products ordered by id.
func (db *DB) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return listProducts(ctx, db.db, f)
}
