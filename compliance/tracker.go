// Package compliance tracks same-day round trips against the pattern
// day trader (PDT) budget: at most maxDayTrades round trips within the
// trailing trackingDays trading days.
package compliance

import (
	"time"

	"github.com/rustyeddy/macdbot/market"
)

// DayTradeRecord is one completed same-day round trip. Records are
// append-only and never deleted; only the trailing count is time-bounded,
// the history itself is retained for audit.
type DayTradeRecord struct {
	Symbol    string
	TradeDate time.Time // calendar date of the sell side
	BuyTime   time.Time
	SellTime  time.Time
	Quantity  int
}

// Tracker answers whether a new same-day round trip is permitted. It
// gates only the open side of a would-be day trade: closing a position
// opened on a prior calendar day is never a day trade and is never
// blocked here.
type Tracker struct {
	maxDayTrades int
	trackingDays int
	records      []DayTradeRecord
}

func NewTracker(maxDayTrades, trackingDays int) *Tracker {
	return &Tracker{
		maxDayTrades: maxDayTrades,
		trackingDays: trackingDays,
	}
}

// RecordRoundTrip appends a day-trade record if and only if the buy and
// sell happened on the same calendar date. Returns true when a record
// was created.
func (t *Tracker) RecordRoundTrip(symbol string, buyTime, sellTime time.Time, qty int) bool {
	if !market.SameDay(buyTime, sellTime) {
		return false
	}
	t.records = append(t.records, DayTradeRecord{
		Symbol:    symbol,
		TradeDate: market.DayOf(sellTime),
		BuyTime:   buyTime,
		SellTime:  sellTime,
		Quantity:  qty,
	})
	return true
}

// Reset drops the in-memory history. The configured budget is kept.
func (t *Tracker) Reset() {
	t.records = t.records[:0]
}

// Restore seeds the tracker from persisted history, oldest first.
func (t *Tracker) Restore(records []DayTradeRecord) {
	t.records = append(t.records[:0], records...)
}

// Records returns a copy of the full history.
func (t *Tracker) Records() []DayTradeRecord {
	out := make([]DayTradeRecord, len(t.records))
	copy(out, t.records)
	return out
}

// TrailingCount counts records inside the trailing window ending at asOf.
func (t *Tracker) TrailingCount(asOf time.Time) int {
	return TrailingCount(t.records, asOf, t.trackingDays)
}

// CanOpenDayTrade reports whether a new same-day round trip opened now
// would stay within the budget.
func (t *Tracker) CanOpenDayTrade(now time.Time) bool {
	return t.TrailingCount(now) < t.maxDayTrades
}

// TrailingCount is the pure windowing function: it counts records whose
// trade date is on or after the cutoff found by walking back windowDays
// trading days (weekday-only) from asOf. The underlying history is never
// mutated or pruned.
func TrailingCount(records []DayTradeRecord, asOf time.Time, windowDays int) int {
	cutoff := market.TradingDaysAgo(asOf, windowDays)
	n := 0
	for _, r := range records {
		if !r.TradeDate.Before(cutoff) {
			n++
		}
	}
	return n
}
