package journal

import (
	"github.com/rustyeddy/macdbot/compliance"
	"github.com/rustyeddy/macdbot/market"
	"github.com/rustyeddy/macdbot/position"
)

// RecoveredState is what a journal replay reconstructs at process start.
type RecoveredState struct {
	// OpenPosition is the position left open by the last unmatched buy,
	// nil when the history ends flat.
	OpenPosition *position.Position

	// DayTrades holds every same-day round trip in the history, oldest
	// first, for seeding the compliance tracker.
	DayTrades []compliance.DayTradeRecord
}

// Replay walks the transaction history in append order and rebuilds the
// current position and the day-trade history. A buy opens a pending
// position; the next sell closes it, producing a day-trade record when
// both sides share a calendar date.
func Replay(records []TransactionRecord) RecoveredState {
	var st RecoveredState
	var pending *TransactionRecord

	for i := range records {
		r := records[i]
		switch r.Type {
		case position.Buy:
			pending = &records[i]
		case position.Sell:
			if pending != nil && market.SameDay(pending.Time, r.Time) {
				st.DayTrades = append(st.DayTrades, compliance.DayTradeRecord{
					Symbol:    r.Symbol,
					TradeDate: market.DayOf(r.Time),
					BuyTime:   pending.Time,
					SellTime:  r.Time,
					Quantity:  r.Quantity,
				})
			}
			pending = nil
		}
	}

	if pending != nil {
		st.OpenPosition = &position.Position{
			Symbol:     pending.Symbol,
			Quantity:   pending.Quantity,
			EntryPrice: pending.Price,
			EntryTime:  pending.Time,
			State:      position.StateOpen,
		}
	}
	return st
}
