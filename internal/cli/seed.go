package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/internal/domain"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalogue, sales and purchases",
	Long: `Load a sample catalogue of uniforms, books and supplies, then record a
few sales and purchases through the accounting engine. Refuses to run
against a ledger that already has products.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

// errNotEmpty is returned when seeding a ledger that already has products.
var errNotEmpty = errors.New("ledger already has products; seed only runs on an empty database")

type sampleMovement struct {
	product  int // index into sampleProducts
	quantity int
	amount   int64
}

var sampleProducts = []domain.ProductInput{
	{Name: "PE Uniform", Quantity: 30, Price: decimal.NewFromInt(15000), Category: domain.CategoryUniform},
	{Name: "School Uniform", Quantity: 20, Price: decimal.NewFromInt(25000), Category: domain.CategoryUniform},
	{Name: "Laboratory Uniform", Quantity: 100, Price: decimal.NewFromInt(499), Category: domain.CategoryUniform},
	{Name: "Physics Book", Quantity: 200, Price: decimal.NewFromInt(250), Category: domain.CategoryBook},
	{Name: "Chemistry Book", Quantity: 25, Price: decimal.NewFromInt(2000), Category: domain.CategoryBook},
	{Name: "Calculator", Quantity: 50, Price: decimal.NewFromInt(999), Category: domain.CategoryOthers},
	{Name: "School Supplies Set", Quantity: 75, Price: decimal.NewFromInt(1500), Category: domain.CategoryOthers},
}

var sampleSales = []sampleMovement{
	{product: 0, quantity: 5, amount: 75000},
	{product: 1, quantity: 8, amount: 200000},
	{product: 3, quantity: 15, amount: 3750},
}

var samplePurchases = []sampleMovement{
	{product: 0, quantity: 10, amount: 120000},
	{product: 1, quantity: 15, amount: 300000},
	{product: 3, quantity: 50, amount: 10000},
}

func runSeed(cmd *cobra.Command, args []string) error {
	st, err := openStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seedSample(cmd.Context(), st); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Added %d sample products\n", len(sampleProducts))
	fmt.Fprintf(out, "✓ Recorded %d sales and %d purchases\n", len(sampleSales), len(samplePurchases))
	fmt.Fprintf(out, "✓ Ledger ready at %s\n", st.db.Path())
	return nil
}

func seedSample(ctx context.Context, st *stack) error {
	existing, err := st.catalog.List(ctx, domain.ProductFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return errNotEmpty
	}

	ids := make([]int64, len(sampleProducts))
	for i, in := range sampleProducts {
		p, err := st.catalog.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", in.Name, err)
		}
		ids[i] = p.ID
	}
	for _, m := range sampleSales {
		if _, err := st.engine.RecordSale(ctx, ids[m.product], m.quantity, decimal.NewFromInt(m.amount)); err != nil {
			return fmt.Errorf("seed sale: %w", err)
		}
	}
	for _, m := range samplePurchases {
		if _, err := st.engine.RecordPurchase(ctx, ids[m.product], m.quantity, decimal.NewFromInt(m.amount)); err != nil {
			return fmt.Errorf("seed purchase: %w", err)
		}
	}
	return nil
}
