package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "strategylab",
	Short: "Backtest intraday strategies and pick the live variant",
	Long: `Strategylab simulates intraday strategies bar by bar over historical data.

It provides tools for:
  - Running the Bloom straddle and the Sprout reversal over a grid of variants
  - Computing win rate, retention, drawdown and balance-scaled net profit
  - Deriving a switching policy across variants
  - Loading price bars from a SQLite store

Complete documentation is available at https://github.com/rustyeddy/strategylab`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
