package main

import (
	"os"

	"github.com/cleared-dev/ledger/internal/commands"
)

func main() {
	if err := commands.Execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
