package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/taskboard/internal/seed"
)

var (
	sampleCount int
	skipSamples bool
)

// NewSeedCommand is the seed command on its own, for the standalone binary.
func NewSeedCommand() *cobra.Command {
	return Standalone(newSeedCmd())
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create reference data and sample students",
		Long: `Create the "AI System" project, the "To Do" and "In Progress" stages and
the starter task when they are missing, assigning the task to the first user.
Then insert random sample students. The fixtures are idempotent; the samples
are not: every run adds more students.`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}

	cmd.Flags().IntVar(&sampleCount, "samples", 0, "number of sample students (default from config, 100)")
	cmd.Flags().BoolVar(&skipSamples, "skip-samples", false, "only create the fixtures")
	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, storm, err := openStorm(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	seeder := seed.NewSeeder(storm, nil)
	out := cmd.OutOrStdout()

	res, err := seeder.Fixtures(ctx)
	if err != nil {
		return err
	}
	for _, what := range res.Created {
		fmt.Fprintf(out, "Created %s\n", what)
	}
	if res.AssigneeChanged {
		fmt.Fprintf(out, "Assigned %q to user %d\n", res.Task.Title, *res.Task.AssigneeID)
	}

	if skipSamples {
		return nil
	}

	n := cfg.Seed.Samples
	if cmd.Flags().Changed("samples") {
		n = sampleCount
	}
	if n < 0 {
		return fmt.Errorf("--samples must not be negative, got %d", n)
	}

	students, err := seeder.Samples(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Inserted %d sample students\n", len(students))
	return nil
}
