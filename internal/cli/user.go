package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// ─── user ───────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)

	userAddCmd.Flags().StringP("password", "p", "", "Password for the new account (required)")
	userAddCmd.Flags().String("full-name", "", "Display name")
	userAddCmd.Flags().String("email", "", "Contact email")
	userAddCmd.MarkFlagRequired("password")
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API login accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Create a login account",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	fullName, _ := cmd.Flags().GetString("full-name")
	email, _ := cmd.Flags().GetString("email")

	st, err := openStack()
	if err != nil {
		return err
	}
	defer st.Close()

	u := &domain.User{Username: args[0], FullName: fullName, Email: email}
	if err := st.db.CreateUser(cmd.Context(), u, password); err != nil {
		return fmt.Errorf("create user %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created user %s (id %d)\n", u.Username, u.ID)
	return nil
}
