package main

import (
	"os"

	"github.com/farmhand-data/scout.report/cmd/scoutd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
