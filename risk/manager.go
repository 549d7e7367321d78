// Package risk implements position sizing under a capital envelope and
// profit-target / stop-loss exit evaluation.
package risk

import (
	"math"

	"github.com/rustyeddy/macdbot/market"
	"github.com/rustyeddy/macdbot/position"
)

// ExitReason identifies why an open position should be closed.
type ExitReason string

const (
	ExitTarget ExitReason = "TARGET"
	ExitStop   ExitReason = "STOP"
)

// Manager evaluates capital and exit constraints for a single instrument.
// ProfitTargetPct is positive (e.g. 1.0 for +1%), StopLossPct negative
// (e.g. -0.5 for -0.5%).
type Manager struct {
	ProfitTargetPct float64
	StopLossPct     float64
}

func NewManager(targetPct, stopPct float64) *Manager {
	return &Manager{
		ProfitTargetPct: targetPct,
		StopLossPct:     stopPct,
	}
}

// SizePosition returns how many whole shares to buy at price given the
// configured capital limit and the account's available funds:
// floor(min(capitalLimit, availableFunds) / price). A result of 0 means
// "cannot open a position" and is not an error; callers treat it as HOLD.
func SizePosition(capitalLimit, availableFunds, price float64) int {
	if price <= 0 {
		return 0
	}
	investable := math.Min(capitalLimit, availableFunds)
	qty := int(math.Floor(investable / price))
	if qty < 1 {
		return 0
	}
	return qty
}

// EvaluateExit checks an open position against the profit target and stop
// loss. The target check runs first so the outcome is deterministic even
// under degenerate configurations where both thresholds are satisfied.
func (m *Manager) EvaluateExit(pos position.Position, currentPrice float64) (ExitReason, bool) {
	if pos.State != position.StateOpen {
		return "", false
	}

	pnlPct := market.PercentChange(pos.EntryPrice, currentPrice)

	if pnlPct >= m.ProfitTargetPct {
		return ExitTarget, true
	}
	if pnlPct <= m.StopLossPct {
		return ExitStop, true
	}
	return "", false
}
