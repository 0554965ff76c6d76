package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/app/accounting"
	"github.com/stockroom-app/stockroom/internal/domain"
	"github.com/stockroom-app/stockroom/internal/infra/sqlite"
)

func newService(t *testing.T) (*Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

func ptr[T any](v T) *T { return &v }

func validInput() domain.ProductInput {
	return domain.ProductInput{
		Name:     "  School Uniform - Size M ",
		Quantity: 30,
		Price:    decimal.RequireFromString("15000.00"),
		Category: "Uniform",
	}
}

func TestCreate_NormalisesAndStores(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "School Uniform - Size M", p.Name)
	assert.Equal(t, domain.CategoryUniform, p.Category)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, got.Price.Equal(p.Price))
}

func TestCreate_RejectsInvalid(t *testing.T) {
	svc, _ := newService(t)

	in := validInput()
	in.Category = "electronics"
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidCategory)
	assert.True(t, domain.IsValidation(err))

	list, err := svc.List(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestList_Filters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.ProductInput{Name: "English Reader", Quantity: 5, Category: "book"})
	require.NoError(t, err)

	books, err := svc.List(ctx, domain.ProductFilter{Category: domain.CategoryBook})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "English Reader", books[0].Name)

	found, err := svc.List(ctx, domain.ProductFilter{Query: "uniform"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUpdate_PartialPatch(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, domain.ProductPatch{Price: ptr(decimal.NewFromInt(16000))})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(16000)))
	assert.Equal(t, p.Name, updated.Name)
	assert.Equal(t, 30, updated.Quantity)
}

func TestUpdate_InvalidFieldLeavesProduct(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, domain.ProductPatch{Name: ptr("  "), Price: ptr(decimal.NewFromInt(1))})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	got, _ := svc.Get(ctx, p.ID)
	assert.True(t, got.Price.Equal(p.Price), "rejected patch must not be applied")
}

func TestUpdate_QuantityLockedAfterLedgerActivity(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	// No ledger rows yet: quantity is still editable.
	updated, err := svc.Update(ctx, p.ID, domain.ProductPatch{Quantity: ptr(40)})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Quantity)

	_, err = accounting.New(db).RecordSale(ctx, p.ID, 5, decimal.NewFromInt(75000))
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, domain.ProductPatch{Quantity: ptr(100)})
	require.ErrorIs(t, err, domain.ErrQuantityLocked)

	// Restating the current quantity is harmless.
	_, err = svc.Update(ctx, p.ID, domain.ProductPatch{Quantity: ptr(35), Name: ptr("Uniform M")})
	require.NoError(t, err)

	got, _ := svc.Get(ctx, p.ID)
	assert.Equal(t, 35, got.Quantity)
	assert.Equal(t, "Uniform M", got.Name)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Update(context.Background(), 404, domain.ProductPatch{Name: ptr("x")})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDelete(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	free, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, free.ID))
	_, err = svc.Get(ctx, free.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	used, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = accounting.New(db).RecordPurchase(ctx, used.ID, 5, decimal.NewFromInt(1))
	require.NoError(t, err)

	err = svc.Delete(ctx, used.ID)
	require.ErrorIs(t, err, domain.ErrProductReferenced)
	_, err = svc.Get(ctx, used.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, 999), domain.ErrProductNotFound)
}
