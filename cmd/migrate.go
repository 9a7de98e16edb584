package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashraf950/timesheet-client/internal/session"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply (or roll back) the session database migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	// Opening the store already applies pending migrations.
	store, err := session.OpenSQLite(cmd.Context(), cfg.Session.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if !migrateRollback {
		fmt.Fprintln(cmd.OutOrStdout(), "session database is up to date:", cfg.Session.Path)
		return nil
	}

	db, err := store.DB()
	if err != nil {
		return err
	}
	if err := session.Migrate(cmd.Context(), db, true); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "rolled back latest session migration")
	return nil
}
