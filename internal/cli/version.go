package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/eleven-am/taskboard/internal/cli.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersionInfo returns the multi-line version report.
func FullVersionInfo() string {
	return fmt.Sprintf("Taskboard %s\n  commit: %s\n  built:  %s\n  go:     %s\n  os:     %s/%s\n",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display Taskboard version and build information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(FullVersionInfo())
		},
	}
}
