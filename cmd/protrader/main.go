package main

import (
	"os"

	"github.com/planetprotrader/backend/cmd/protrader/commands"
)

// main is the entry point for the ProTrader CLI
// ⭐ Single CLI entry point: go run ./cmd/protrader [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
