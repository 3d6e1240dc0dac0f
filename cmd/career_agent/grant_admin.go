package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/types"
)

var (
	grantEmail       string
	grantRevoke      bool
	grantDatabaseURL string
)

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin",
	Short: "Give an account the admin role",
	Long:  "Give an existing account the admin role, or take it away with --revoke. The account must sign in again for the change to reach its session token.",
	RunE:  runGrantAdmin,
}

func init() {
	grantAdminCmd.Flags().StringVar(&grantEmail, "email", "", "Email of the account to promote (required)")
	grantAdminCmd.Flags().BoolVar(&grantRevoke, "revoke", false, "Demote the account back to a regular user")
	grantAdminCmd.Flags().StringVar(&grantDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	_ = grantAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(grantAdminCmd)
}

// roleSetter is the slice of *db.DB that grant-admin needs.
type roleSetter interface {
	SetRole(ctx context.Context, email, role string) (*db.Account, error)
}

func runGrantAdmin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := openDatabase(ctx, grantDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	role := types.RoleAdmin
	if grantRevoke {
		role = types.RoleUser
	}
	return grantRole(ctx, database, os.Stdout, grantEmail, role)
}

func grantRole(ctx context.Context, store roleSetter, out io.Writer, email, role string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	account, err := store.SetRole(ctx, email, role)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("no account found for %s", email)
	}

	_, _ = fmt.Fprintf(out, "%s now has role %q\n", account.Email, account.Role)
	return nil
}
