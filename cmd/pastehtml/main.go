// Package main is the entry point for the pastehtml CLI.
package main

import (
	"os"

	"github.com/jmylchreest/pastehtml/cmd/pastehtml/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
