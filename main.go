package main

import (
	"fmt"
	"os"

	"mongovault/cmd"
	"mongovault/internal/conf"
)

func main() {
	settings := &conf.Settings{}
	rootCmd := cmd.RootCommand(settings)

	// Every failure class exits 1: validation errors and propagated
	// subprocess failures alike. Alerting keys off the exit status and the
	// last logged message.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
