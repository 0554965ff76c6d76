// Package sqlite implements the ledger store on an embedded SQLite database.
// Products, sales, purchases and operator accounts live in one file; every
// write that touches stock runs inside a BEGIN IMMEDIATE transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// FileName is the database file created inside the data directory.
const FileName = "stockroom.db"

// DB wraps the SQLite handle.
type DB struct {
	db   *sql.DB
	path string
}

var (
	_ domain.LedgerStore     = (*DB)(nil)
	_ domain.SnapshotSource  = (*DB)(nil)
	_ domain.CredentialStore = (*DB)(nil)
)

// Open opens (or creates) the database in dir and applies migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, FileName)

	// _txlock=immediate makes every read-write BeginTx a BEGIN IMMEDIATE, so
	// a read-check-write sequence holds the write lock from its first read.
	dsn := "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)"

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	db := &DB{db: sqldb, path: path}
	if err := db.migrate(); err != nil {
		sqldb.Close()
		return nil, err
	}
	zap.L().Debug("sqlite ledger opened", zap.String("path", path))
	return db, nil
}

// Close releases the database handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema statements, applied in order on every open.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS products (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			price       TEXT NOT NULL,
			category    TEXT NOT NULL CHECK (category IN ('uniform', 'book', 'others')),
			description TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,

		`CREATE TABLE IF NOT EXISTS sales (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
			quantity    INTEGER NOT NULL CHECK (quantity > 0),
			total_price TEXT NOT NULL,
			date        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_product ON sales(product_id)`,

		`CREATE TABLE IF NOT EXISTS purchases (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
			quantity    INTEGER NOT NULL CHECK (quantity > 0),
			cost        TEXT NOT NULL,
			date        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_product ON purchases(product_id)`,

		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			full_name     TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			disabled      INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL
		)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ─── Transactions ───────────────────────────────────────────────────────────

// InTx runs fn inside one exclusive transaction.
func (db *DB) InTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&ledgerTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
