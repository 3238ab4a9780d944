package main

import (
	"fmt"
	"os"

	"github.com/eleven-am/taskboard/internal/cli"
	"github.com/eleven-am/taskboard/internal/logger"
)

func main() {
	err := cli.NewRootCommand().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
