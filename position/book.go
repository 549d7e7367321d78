package position

import (
	"fmt"
	"time"
)

// Book is the two-state position machine for one symbol. It is mutated
// only by the orchestrator goroutine; Current returns a copy so no
// external reader ever observes live state.
//
// Transitions are committed explicitly (Open/Close) by the caller after
// the corresponding order has executed, so a rejected order leaves the
// book untouched.
type Book struct {
	pos Position
}

// NewBook creates a flat book for symbol.
func NewBook(symbol string) *Book {
	return &Book{pos: Position{Symbol: symbol, State: StateFlat}}
}

// Current returns a copy of the position.
func (b *Book) Current() Position {
	return b.pos
}

// Flat reports whether no position is held.
func (b *Book) Flat() bool {
	return b.pos.State == StateFlat
}

// BuyIntent builds the intent for opening qty shares at price. The book
// itself is not modified; call Open once the order has filled.
func (b *Book) BuyIntent(qty int, price float64) TransactionIntent {
	return TransactionIntent{
		Action:         Buy,
		Symbol:         b.pos.Symbol,
		Quantity:       qty,
		ReferencePrice: price,
		Reason:         ReasonCrossover,
	}
}

// SellIntent builds the intent for closing the open position at price
// for the given reason.
func (b *Book) SellIntent(price float64, reason string) TransactionIntent {
	return TransactionIntent{
		Action:         Sell,
		Symbol:         b.pos.Symbol,
		Quantity:       b.pos.Quantity,
		ReferencePrice: price,
		Reason:         reason,
	}
}

// Open commits the flat -> open transition.
func (b *Book) Open(qty int, price float64, at time.Time) error {
	if b.pos.State != StateFlat {
		return fmt.Errorf("position already open: %d %s @ %.4f", b.pos.Quantity, b.pos.Symbol, b.pos.EntryPrice)
	}
	if qty < 1 {
		return fmt.Errorf("cannot open position with quantity %d", qty)
	}
	b.pos.Quantity = qty
	b.pos.EntryPrice = price
	b.pos.EntryTime = at
	b.pos.State = StateOpen
	return nil
}

// Close commits the open -> flat transition and returns the position
// that was closed.
func (b *Book) Close() (Position, error) {
	if b.pos.State != StateOpen {
		return Position{}, fmt.Errorf("no open position for %s", b.pos.Symbol)
	}
	closed := b.pos
	b.pos = Position{Symbol: b.pos.Symbol, State: StateFlat}
	return closed, nil
}

// Restore forces the book to a previously persisted position. Used by
// journal replay at startup; the position must belong to this symbol.
func (b *Book) Restore(p Position) error {
	if p.Symbol != b.pos.Symbol {
		return fmt.Errorf("restore: symbol mismatch %q != %q", p.Symbol, b.pos.Symbol)
	}
	b.pos = p
	return nil
}
