package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "macdbot",
	Short: "A MACD crossover decision engine with PDT compliance",
	Long: `Macdbot polls a price feed for a single instrument, computes a streaming
MACD, and converts crossover signals into bounded buy/sell decisions.

It provides:
  - Incremental MACD computation (fast/slow/signal EMAs)
  - Crossover signal detection with profit-target and stop-loss exits
  - Position sizing under a configurable capital limit
  - Pattern-day-trader budget tracking over a rolling trading-day window
  - A durable transaction journal (SQLite or JSON) with restart recovery`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}
