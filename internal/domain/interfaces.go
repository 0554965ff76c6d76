package domain

import "context"

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// LedgerTx is the view of the store available inside one exclusive
// transaction. Every method sees the writes made earlier in the same tx.
type LedgerTx interface {
	// GetProduct returns ErrProductNotFound when id does not exist.
	GetProduct(ctx context.Context, id int64) (*Product, error)

	// AdjustQuantity adds delta to the product's quantity. It fails with
	// ErrInsufficientStock rather than let quantity drop below zero.
	AdjustQuantity(ctx context.Context, id int64, delta int) error

	InsertSale(ctx context.Context, s *Sale) error
	InsertPurchase(ctx context.Context, p *Purchase) error

	InsertProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error

	// LedgerRefs counts the sales and purchases referencing a product.
	LedgerRefs(ctx context.Context, id int64) (int, error)
}

// LedgerStore abstracts the transactional relational store.
type LedgerStore interface {
	// InTx runs fn inside a transaction that is exclusive against other
	// writers. fn's error rolls everything back.
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error

	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
	ListSales(ctx context.Context, f LedgerFilter) ([]Sale, error)
	ListPurchases(ctx context.Context, f LedgerFilter) ([]Purchase, error)
}

// SnapshotSource reads the whole ledger from a single point in time.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*LedgerSnapshot, error)
}

// CredentialStore looks up operators and checks their passwords.
type CredentialStore interface {
	Lookup(ctx context.Context, username string) (*User, error)
	// Verify returns ErrInvalidCredentials for an unknown user, a wrong
	// password or a disabled account.
	Verify(ctx context.Context, username, password string) (*User, error)
}
