package main

import (
	"fmt"

	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the prediction history schema to the latest version.

Other commands migrate automatically; this is useful after an upgrade or to
check the schema version with --status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			status, _ := cmd.Flags().GetBool("status")
			dbPath := a.cfg.Database.Path

			if status {
				store, err := storage.NewSQLiteStorage(dbPath)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = store.Close() }()

				version, err := store.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "Database: %s\nSchema version: %d (latest %d)\n", dbPath, version, storage.ExpectedSchemaVersion)
				return err
			}

			common.LogInfo("Running database migrations", common.Fields{"database": dbPath})
			store, err := a.openStorage(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			defer func() { _ = store.Close() }()

			_, err = fmt.Fprintln(a.out, cli.FormatSuccess("Database migrations completed"))
			return err
		},
	}

	cmd.Flags().Bool("status", false, "Show the current schema version without migrating")

	return cmd
}
