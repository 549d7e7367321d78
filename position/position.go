// Package position owns the authoritative position state for a single
// instrument and the transitions between flat and open.
package position

import "time"

// State is the position lifecycle state. There is no terminal state; the
// book cycles between flat and open for as long as the engine runs.
type State string

const (
	StateFlat State = "FLAT"
	StateOpen State = "OPEN"
)

// Position is the current holding for one symbol. Exactly one Position
// exists per symbol; it is created on a buy transition and cleared
// (quantity zero, flat) on a sell transition.
type Position struct {
	Symbol     string
	Quantity   int
	EntryPrice float64
	EntryTime  time.Time
	State      State
}

// Action is the side of a transaction intent.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Intent reasons. ReasonCrossover applies to both sides; target and stop
// only ever justify a sell.
const (
	ReasonCrossover = "CROSSOVER"
	ReasonTarget    = "TARGET"
	ReasonStop      = "STOP"
)

// TransactionIntent is the single per-cycle output of the state machine,
// consumed by the order executor. Transient; never stored.
type TransactionIntent struct {
	Action         Action
	Symbol         string
	Quantity       int
	ReferencePrice float64
	Reason         string
}
