package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eleven-am/taskboard/internal/migration"
	"github.com/eleven-am/taskboard/internal/models"
)

var (
	schemaFormat string
	schemaOutput string
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe the schema the models expect",
		Long: `Render the tables, columns, foreign keys and checks derived from the
model definitions. No database connection is needed.`,
		Args: cobra.NoArgs,
		RunE: runSchema,
	}

	cmd.Flags().StringVar(&schemaFormat, "format", "markdown", "Output format (markdown, json, yaml)")
	cmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func runSchema(cmd *cobra.Command, args []string) error {
	metas, err := models.Metadata()
	if err != nil {
		return err
	}

	s, err := migration.Build(migration.DefaultSchema, metas)
	if err != nil {
		return err
	}

	out, err := migration.Export(s, migration.ExportFormat(schemaFormat))
	if err != nil {
		return err
	}

	if schemaOutput == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	if err := os.WriteFile(schemaOutput, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", schemaOutput, err)
	}
	if verbose {
		cmd.Printf("Schema written to %s\n", schemaOutput)
	}
	return nil
}
