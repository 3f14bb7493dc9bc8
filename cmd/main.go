package main

import (
	"os"

	"jlink-update/internal/cli"
	"jlink-update/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
