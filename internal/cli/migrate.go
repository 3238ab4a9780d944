package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eleven-am/taskboard/internal/database"
	"github.com/eleven-am/taskboard/internal/migration"
	"github.com/eleven-am/taskboard/internal/models"
)

var (
	dryRun              bool
	createDBIfNotExists bool
	allowDestructive    bool
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema in line with the models",
		Long: `Inspect the managed tables, diff them against the model definitions
and apply the resulting changes. Tables the models do not describe are left alone.
Destructive changes (dropped tables, columns or constraints) require --allow-destructive.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the planned SQL without applying it")
	cmd.Flags().BoolVar(&createDBIfNotExists, "create-db", false, "Create the database if it does not exist")
	cmd.Flags().BoolVar(&allowDestructive, "allow-destructive", false, "Allow potentially destructive operations")
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	if createDBIfNotExists {
		if err := database.EnsureDatabaseExists(ctx, cfg.Database.URL); err != nil {
			return err
		}
	}

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	metas, err := models.Metadata()
	if err != nil {
		return err
	}

	migrator := migration.NewMigrator(db.DB, metas)
	plan, err := migrator.Plan(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if plan.Empty() {
		fmt.Fprintln(out, "Schema is up to date")
		return nil
	}

	for _, stmt := range plan.Statements {
		fmt.Fprintf(out, "%s;\n", stmt)
	}
	for _, d := range plan.Destructive {
		fmt.Fprintf(out, "WARNING: destructive change: %s\n", d)
	}

	if dryRun {
		fmt.Fprintf(out, "\n%d change(s) planned (dry run)\n", len(plan.Changes))
		return nil
	}

	if err := migrator.Apply(ctx, plan, allowDestructive); err != nil {
		if errors.Is(err, migration.ErrDestructive) {
			return fmt.Errorf("%w; re-run with --allow-destructive to apply", err)
		}
		return err
	}

	fmt.Fprintf(out, "\nApplied %d change(s)\n", len(plan.Changes))
	return nil
}
