// Command set-admin-password creates the admin account or resets its password.
package main

import (
	"fmt"
	"os"

	"github.com/eleven-am/taskboard/internal/cli"
	"github.com/eleven-am/taskboard/internal/logger"
)

func main() {
	err := cli.NewSetAdminPasswordCommand().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
