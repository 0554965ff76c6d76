package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/internal/api"
	"github.com/stockroom-app/stockroom/internal/domain"
)

// ─── summary / export ───────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Write CSV to this file instead of stdout")
	exportCmd.Flags().String("category", "", "Only export products in this category")
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard summary as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	st, err := openStack()
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := st.dashboard.ComputeSummary(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the product catalogue as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	category, _ := cmd.Flags().GetString("category")

	st, err := openStack()
	if err != nil {
		return err
	}
	defer st.Close()

	products, err := st.catalog.List(cmd.Context(), domain.ProductFilter{Category: domain.Category(category)})
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	if err := api.WriteProductsCSV(w, products); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d products to %s\n", len(products), output)
	}
	return nil
}
