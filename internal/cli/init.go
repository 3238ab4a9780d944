package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eleven-am/taskboard/internal/config"
)

var (
	initPath  string
	initForce bool
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a taskboard.yaml configuration file",
		Long: `Creates a taskboard.yaml configuration file with the default settings
so they can be customized. --url sets the database URL written to the file.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().StringVar(&initPath, "path", "taskboard.yaml", "file to write")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration file")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(initPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists. Use --force to overwrite", initPath)
	}

	out := config.Default()
	if databaseURL != "" {
		out.Database.URL = databaseURL
	}

	if err := config.Save(out, initPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created %s\n", initPath)
	fmt.Fprintf(w, "\nNext steps:\n")
	fmt.Fprintf(w, "1. Update the database URL and session secret in %s\n", initPath)
	fmt.Fprintf(w, "2. Run 'taskboard migrate' to create the tables\n")
	fmt.Fprintf(w, "3. Run 'taskboard set-admin-password' and 'taskboard seed'\n")
	fmt.Fprintf(w, "4. Run 'taskboard serve' and open %s\n", out.AdminURL())

	return nil
}
