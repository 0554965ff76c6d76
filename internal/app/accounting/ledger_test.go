package accounting

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/stockroom-app/stockroom/internal/domain"
	"github.com/stockroom-app/stockroom/internal/infra/sqlite"
)

// These tests run the engine against a real SQLite ledger.

func newLedger(t *testing.T, products ...domain.Product) (*sqlite.DB, []int64) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ids := make([]int64, 0, len(products))
	err = db.InTx(context.Background(), func(tx domain.LedgerTx) error {
		for i := range products {
			if err := tx.InsertProduct(context.Background(), &products[i]); err != nil {
				return err
			}
			ids = append(ids, products[i].ID)
		}
		return nil
	})
	require.NoError(t, err)
	return db, ids
}

func quantityOf(t *testing.T, db *sqlite.DB, id int64) int {
	t.Helper()
	p, err := db.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func TestLedger_SaleScenario(t *testing.T) {
	db, ids := newLedger(t, uniform(30))
	engine := New(db)
	ctx := context.Background()

	_, err := engine.RecordSale(ctx, ids[0], 5, decimal.NewFromInt(75000))
	require.NoError(t, err)
	assert.Equal(t, 25, quantityOf(t, db, ids[0]))

	p, _ := db.GetProduct(ctx, ids[0])
	assert.Equal(t, domain.StatusIn, p.Status())

	_, err = engine.RecordSale(ctx, ids[0], 26, decimal.NewFromInt(390000))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 25, quantityOf(t, db, ids[0]))

	sales, err := engine.ListSales(ctx, domain.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestLedger_PurchaseScenario(t *testing.T) {
	book := domain.Product{Name: "Mathematics Textbook", Quantity: 200, Price: decimal.NewFromInt(8000), Category: domain.CategoryBook}
	db, ids := newLedger(t, book)

	_, err := New(db).RecordPurchase(context.Background(), ids[0], 50, decimal.NewFromInt(400000))
	require.NoError(t, err)
	assert.Equal(t, 250, quantityOf(t, db, ids[0]))

	purchases, err := New(db).ListPurchases(context.Background(), domain.LedgerFilter{ProductID: ids[0]})
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.True(t, purchases[0].Cost.Equal(decimal.NewFromInt(400000)))
}

func TestLedger_HugePurchaseKeepsProductReadable(t *testing.T) {
	db, ids := newLedger(t, uniform(1))
	engine := New(db)
	ctx := context.Background()

	_, err := engine.RecordPurchase(ctx, ids[0], math.MaxInt64, decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = engine.RecordPurchase(ctx, ids[0], domain.MaxQuantity, decimal.Zero)
	require.ErrorIs(t, err, domain.ErrStockLimit)
	assert.Equal(t, 1, quantityOf(t, db, ids[0]))

	_, err = engine.RecordPurchase(ctx, ids[0], 10, decimal.Zero)
	require.NoError(t, err)
	_, err = engine.RecordSale(ctx, ids[0], 2, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 9, quantityOf(t, db, ids[0]))

	snap, err := db.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Len(t, snap.Purchases, 1)
}

func TestLedger_DistinctIDs(t *testing.T) {
	db, ids := newLedger(t, uniform(30))
	engine := New(db)
	ctx := context.Background()

	a, err := engine.RecordSale(ctx, ids[0], 1, decimal.NewFromInt(15000))
	require.NoError(t, err)
	b, err := engine.RecordSale(ctx, ids[0], 1, decimal.NewFromInt(15000))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 28, quantityOf(t, db, ids[0]))

	c, err := engine.RecordPurchase(ctx, ids[0], 2, decimal.NewFromInt(1))
	require.NoError(t, err)
	d, err := engine.RecordPurchase(ctx, ids[0], 2, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.NotEqual(t, c.ID, d.ID)
}

// The running counter must always equal q0 + Σ purchases − Σ accepted sales.
func TestLedger_RunningCounterInvariant(t *testing.T) {
	const q0 = 12
	db, ids := newLedger(t, uniform(q0))
	engine := New(db)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	bought, sold := 0, 0
	for i := 0; i < 200; i++ {
		qty := rng.Intn(8) + 1
		if rng.Intn(2) == 0 {
			_, err := engine.RecordPurchase(ctx, ids[0], qty, decimal.NewFromInt(int64(qty)))
			require.NoError(t, err)
			bought += qty
		} else {
			_, err := engine.RecordSale(ctx, ids[0], qty, decimal.NewFromInt(int64(qty)))
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
				continue
			}
			sold += qty
		}
		require.Equal(t, q0+bought-sold, quantityOf(t, db, ids[0]), "step %d", i)
	}

	sales, err := engine.ListSales(ctx, domain.LedgerFilter{ProductID: ids[0]})
	require.NoError(t, err)
	sum := 0
	for _, s := range sales {
		sum += s.Quantity
	}
	assert.Equal(t, sold, sum)
}

// Concurrent sales against the same stock must admit exactly as many as fit.
func TestLedger_ConcurrentSalesNeverOversell(t *testing.T) {
	const stock, buyers = 10, 25
	db, ids := newLedger(t, uniform(stock))
	engine := New(db)

	var g errgroup.Group
	results := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		i := i
		g.Go(func() error {
			_, results[i] = engine.RecordSale(context.Background(), ids[0], 1, decimal.NewFromInt(15000))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	accepted := 0
	for _, err := range results {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, stock, accepted)
	assert.Equal(t, 0, quantityOf(t, db, ids[0]))

	sales, err := engine.ListSales(context.Background(), domain.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, sales, stock)
}
