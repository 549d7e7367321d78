// Package journal persists the append-only transaction history. The
// journal is the source of truth for restart recovery: replaying it
// reconstructs the open position and the day-trade history, so the
// engine never assumes a clean start.
package journal

import (
	"time"

	"github.com/rustyeddy/macdbot/position"
)

// TransactionRecord is one executed buy or sell. ProfitLoss and
// ProfitLossPct are set on sells only.
type TransactionRecord struct {
	ID       string
	Type     position.Action
	Symbol   string
	Quantity int
	Price    float64
	Total    float64
	Time     time.Time
	OrderID  string

	ProfitLoss    *float64
	ProfitLossPct *float64
}

// Journal is the append-only transaction sink. LoadAll returns the full
// history in append order for startup replay.
type Journal interface {
	Append(TransactionRecord) error
	LoadAll() ([]TransactionRecord, error)
	Close() error
}
