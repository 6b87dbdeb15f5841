package main

import (
	"fmt"
	"os"

	"apparel-designer/app/cli"
	"apparel-designer/config"
)

var version string

func main() {
	// Load .env file in development (a missing file is ignored).
	// In production, variables should be set directly.
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
