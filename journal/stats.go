package journal

import "github.com/rustyeddy/macdbot/position"

// Summary aggregates realized results over a transaction history.
type Summary struct {
	Transactions int
	TotalPL      float64
	Wins         int
	Losses       int
}

// WinRate returns wins/(wins+losses) in percent, 0 when no closed trades.
func (s Summary) WinRate() float64 {
	closed := s.Wins + s.Losses
	if closed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(closed) * 100
}

// Summarize computes realized P/L statistics from sell records.
func Summarize(records []TransactionRecord) Summary {
	s := Summary{Transactions: len(records)}
	for _, r := range records {
		if r.Type != position.Sell || r.ProfitLoss == nil {
			continue
		}
		s.TotalPL += *r.ProfitLoss
		switch {
		case *r.ProfitLoss > 0:
			s.Wins++
		case *r.ProfitLoss < 0:
			s.Losses++
		}
	}
	return s
}
