package main

import (
	"fmt"

	"storefront/internal/app"
	"storefront/internal/database"

	"github.com/spf13/cobra"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the remote tables",
	Long:  `Migrate applies the embedded goose migrations to REMOTE_DB_URL.`,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "only print the migration status")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if !storefront.Remote.Configured() {
		return fmt.Errorf("remote backend is not configured (set REMOTE_DB_URL and REMOTE_DB_KEY)")
	}
	ctx := contextOf(cmd)

	if migrateStatus {
		db := database.OpenDB(storefront.Remote.Pool())
		defer db.Close()
		return database.GetMigrationStatus(ctx, db, log)
	}

	if err := app.Migrate(ctx, storefront.Remote, log); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
