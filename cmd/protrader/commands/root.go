package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "protrader",
	Short: "Planet ProTrader - gold trading simulation backend",
	Long: `Planet ProTrader Unified CLI

Backend for the ProTrader dashboard: simulated bot fleet, XAUUSD
trading snapshot, signals, playbook journal, bot marketplace, VPS
fleet, debugger and screenshot capture, plus the optional link to the
live MT5 control service.

Usage:
  go run ./cmd/protrader [command]

Examples:
  go run ./cmd/protrader api
  go run ./cmd/protrader scheduler start
  go run ./cmd/protrader status
  go run ./cmd/protrader control status
  go run ./cmd/protrader db-check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug level logging")
}
