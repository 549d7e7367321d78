package engine

import "github.com/rustyeddy/macdbot/indicators"

// Signal is the crossover outcome for one cycle.
type Signal int

const (
	SignalNone Signal = iota
	SignalBullish
	SignalBearish
)

func (s Signal) String() string {
	switch s {
	case SignalBullish:
		return "BULLISH"
	case SignalBearish:
		return "BEARISH"
	default:
		return "NONE"
	}
}

// CrossDetector detects MACD/signal-line crossovers across consecutive
// snapshots. The first snapshot after warm-up can never fire: there is
// no prior snapshot to compare against.
type CrossDetector struct {
	prev     indicators.Snapshot
	havePrev bool
}

// Observe consumes the next snapshot and reports whether it completes a
// crossover. Bullish: previous line <= signal and current line > signal.
// Bearish: previous line >= signal and current line < signal. The two
// can never fire on the same snapshot pair.
func (d *CrossDetector) Observe(s indicators.Snapshot) Signal {
	if !d.havePrev {
		d.prev = s
		d.havePrev = true
		return SignalNone
	}

	prev := d.prev
	d.prev = s

	switch {
	case prev.Line <= prev.Signal && s.Line > s.Signal:
		return SignalBullish
	case prev.Line >= prev.Signal && s.Line < s.Signal:
		return SignalBearish
	default:
		return SignalNone
	}
}

// Reset clears the detector state.
func (d *CrossDetector) Reset() {
	d.prev = indicators.Snapshot{}
	d.havePrev = false
}
