package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bookstore-api/cmd/bookstorectl/output"
	"bookstore-api/internal/config"
	"bookstore-api/internal/infrastructure/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	Long: `Apply the embedded PostgreSQL schema to the database configured by the
DB_* environment variables. Already applied migrations are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	output.Info("Connecting to %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	db := database.NewPostgresDB(cfg.Database.DBConfig())
	if err := db.Connect(ctx); err != nil {
		output.Error("Connection failed")
		return err
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	if err != nil {
		output.Error("Migration failed")
		return fmt.Errorf("migrate: %w", err)
	}

	if len(applied) == 0 {
		output.Success("Schema is up to date")
		return nil
	}
	for _, name := range applied {
		output.Success("Applied %s", name)
	}
	return nil
}
