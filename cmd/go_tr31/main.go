package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/andrei-cloud/go_tr31/internal/commands/cli"
)

func main() {
	// Wipe protected buffers on interrupt and on exit.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	rootCmd, err := cli.NewRootCommand()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		memguard.SafeExit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		memguard.SafeExit(1)
	}
}
