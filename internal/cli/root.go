package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/taskboard/internal/config"
	"github.com/eleven-am/taskboard/internal/logger"
)

// Global configuration variables
var (
	configFile  string
	cfg         *config.Config
	databaseURL string
	debug       bool
	verbose     bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskboard",
		Short: "Taskboard - project and task tracking admin",
		Long: `Taskboard tracks projects, workflow stages and tasks through a
generated web admin backed by PostgreSQL.

Commands:
- serve the admin interface
- migrate the database schema to match the models
- describe the expected schema
- seed reference data and sample students
- reset the admin account password`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newSetAdminPasswordCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Standalone turns a subcommand into a self-contained root, for the
// single-purpose binaries.
func Standalone(cmd *cobra.Command) *cobra.Command {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.PersistentPreRunE = setup
	cmd.Args = cobra.NoArgs
	addGlobalFlags(cmd)
	return cmd
}

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: taskboard.yaml)")
	cmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")
}

// setup loads the configuration and installs the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if databaseURL != "" {
		cfg.Database.URL = databaseURL
	}

	level := cfg.Log.Level
	switch {
	case debug:
		level = "debug"
	case verbose:
		level = "info"
	}

	if err := logger.Setup(logger.Config{Level: level, Format: cfg.Log.Format}); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if verbose {
		cmd.Printf("Using config: %s\n", describeConfig())
	}
	return nil
}

func describeConfig() string {
	if path := configFile; path != "" {
		return path
	}
	if path := config.ConfigPath(); path != "" {
		return path
	}
	return "defaults"
}
