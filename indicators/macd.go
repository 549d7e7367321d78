package indicators

import (
	"fmt"
	"time"

	"github.com/rustyeddy/macdbot/market"
)

// Snapshot is one derived MACD observation. Immutable; a new value is
// produced per price once the indicator is warmed up.
type Snapshot struct {
	Time      time.Time
	Line      float64 // fast EMA - slow EMA
	Signal    float64 // EMA of the Line series
	Histogram float64 // Line - Signal
}

// MACD is a streaming Moving Average Convergence Divergence indicator.
// It maintains a fast and a slow price EMA plus a signal EMA computed
// over the MACD line itself (not over price). The signal EMA cannot
// begin seeding until the slow EMA has seeded, so no snapshot is emitted
// until slow+signal prices have been consumed; after that every Update
// yields a snapshot.
type MACD struct {
	fast   *ExponentialMA
	slow   *ExponentialMA
	signal *ExponentialMA

	slowPeriod   int
	signalPeriod int
	count        int
}

// NewMACD creates a streaming MACD. Fast must be shorter than slow.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:         NewEMA(fast),
		slow:         NewEMA(slow),
		signal:       NewEMA(signal),
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fast.period, m.slowPeriod, m.signalPeriod)
}

// Warmup returns the number of prices consumed before snapshots appear.
func (m *MACD) Warmup() int {
	return m.slowPeriod + m.signalPeriod
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.count = 0
}

// Update consumes the next price. It returns (snapshot, true) once the
// warm-up window has elapsed and (zero, false) before then.
func (m *MACD) Update(p market.PricePoint) (Snapshot, bool) {
	m.count++
	m.fast.Update(p.Close)
	m.slow.Update(p.Close)

	if !m.slow.Ready() {
		return Snapshot{}, false
	}

	// The MACD line exists from the moment the slow EMA is seeded; the
	// signal EMA consumes the line series from its first value.
	line := m.fast.Value() - m.slow.Value()
	m.signal.Update(line)

	if m.count < m.Warmup() {
		return Snapshot{}, false
	}

	sig := m.signal.Value()
	return Snapshot{
		Time:      p.Time,
		Line:      line,
		Signal:    sig,
		Histogram: line - sig,
	}, true
}
