package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"folio/cmd/identity"
	"folio/cmd/internal/app"
)

// userCmd groups account maintenance that has no HTTP surface.
func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(
		setActiveCmd("deactivate", "Deactivate an account; live sessions stop resolving", false),
		setActiveCmd("activate", "Reactivate an account", true),
	)
	return cmd
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := app.LoadConfig()
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("FOLIO_DATABASE_URL is not set")
			}

			pool, err := app.NewDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			store, err := identity.NewPostgresStore(pool)
			if err != nil {
				return err
			}
			acct, err := store.GetUserAuthByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			if err := store.SetActive(ctx, acct.User.ID, active, time.Now().UTC()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", use+"d", acct.User.Email, acct.User.ID)
			return err
		},
	}
}
