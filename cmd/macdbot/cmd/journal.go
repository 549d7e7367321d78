package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/macdbot/journal"
	"github.com/rustyeddy/macdbot/position"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the transaction journal",
	Long: `List journaled transactions and realized-P/L statistics.

Examples:
  macdbot journal --db ./macdbot.sqlite
  macdbot journal --file ./transactions.json --summary`,
	RunE: runJournal,
}

var (
	journalDBPath   string
	journalFilePath string
	journalSummary  bool
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVar(&journalDBPath, "db", "", "path to SQLite journal")
	journalCmd.Flags().StringVar(&journalFilePath, "file", "", "path to JSON journal")
	journalCmd.Flags().BoolVar(&journalSummary, "summary", false, "print summary statistics only")
}

func runJournal(cmd *cobra.Command, args []string) error {
	var (
		jnl journal.Journal
		err error
	)
	switch {
	case journalDBPath != "":
		jnl, err = journal.NewSQLite(journalDBPath)
	case journalFilePath != "":
		jnl, err = journal.NewFile(journalFilePath)
	default:
		return fmt.Errorf("one of --db or --file is required")
	}
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	records, err := jnl.LoadAll()
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}

	if !journalSummary {
		for _, r := range records {
			line := fmt.Sprintf("%s  %-4s %-6s %4d @ %8.2f  total %9.2f",
				r.Time.Format(time.RFC3339), r.Type, r.Symbol, r.Quantity, r.Price, r.Total)
			if r.Type == position.Sell && r.ProfitLoss != nil {
				line += fmt.Sprintf("  P/L %8.2f (%+.2f%%)", *r.ProfitLoss, *r.ProfitLossPct)
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	s := journal.Summarize(records)
	fmt.Printf("Transactions: %d\n", s.Transactions)
	fmt.Printf("Total P/L:    $%.2f\n", s.TotalPL)
	fmt.Printf("Wins/Losses:  %d/%d (win rate %.1f%%)\n", s.Wins, s.Losses, s.WinRate())
	return nil
}
