package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/apiconsole/internal/infrastructure/config"
	"github.com/nerrad567/apiconsole/internal/infrastructure/database"
	"github.com/nerrad567/apiconsole/migrations"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the readings database schema",
		Long:  `Apply, roll back or list the embedded schema migrations. serve applies pending migrations on start.`,
	}

	withDB := func(fn func(ctx context.Context, db *database.DB, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(cmd.Context(), db, cmd)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *database.DB, cmd *cobra.Command) error {
				if err := db.Migrate(ctx, migrations.FS); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest applied migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *database.DB, cmd *cobra.Command) error {
				if err := db.MigrateDown(ctx, migrations.FS); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "latest migration rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *database.DB, cmd *cobra.Command) error {
				applied, pending, err := db.MigrationStatus(ctx, migrations.FS)
				if err != nil {
					return err
				}
				return printMigrationStatus(cmd, opts.format(), applied, pending)
			}),
		},
	)
	return cmd
}

// migrationStatus is one line of migrate status output.
type migrationStatus struct {
	Version   string `json:"version" yaml:"version"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	AppliedAt string `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
}

func printMigrationStatus(cmd *cobra.Command, format outputFormat, applied []database.MigrationRecord, pending []database.Migration) error {
	statuses := make([]migrationStatus, 0, len(applied)+len(pending))
	rows := make([][]string, 0, len(applied)+len(pending))
	for _, r := range applied {
		at := r.AppliedAt.UTC().Format(time.RFC3339)
		statuses = append(statuses, migrationStatus{Version: r.Version, AppliedAt: at})
		rows = append(rows, []string{r.Version, "", at})
	}
	for _, m := range pending {
		statuses = append(statuses, migrationStatus{Version: m.Version, Name: m.Name})
		rows = append(rows, []string{m.Version, m.Name, "pending"})
	}
	return printOutput(cmd.OutOrStdout(), format, statuses, []string{"Version", "Name", "Applied"}, rows)
}

// openDatabase opens the configured SQLite file.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
