// Package paper is an in-memory brokerage used for dry runs and tests.
// It implements every collaborator contract in package broker over a
// settable quote and simple cash accounting: buys debit cash, sells
// credit it, no margin, no partial fills.
package paper

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustyeddy/macdbot/broker"
	"github.com/rustyeddy/macdbot/pkg/id"
	"github.com/rustyeddy/macdbot/position"
)

type Broker struct {
	mu       sync.Mutex
	cash     float64
	prices   map[string]float64
	holdings map[string]int

	// nextReject, when non-empty, rejects the next Submit with that
	// reason. Lets tests exercise the no-commit-on-rejection path.
	nextReject string
}

func New(startingCash float64) *Broker {
	return &Broker{
		cash:     startingCash,
		prices:   make(map[string]float64),
		holdings: make(map[string]int),
	}
}

// SetPrice publishes the current quote for symbol.
func (b *Broker) SetPrice(symbol string, price float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[symbol] = price
}

// RejectNext makes the next Submit fail with a broker-side rejection.
func (b *Broker) RejectNext(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextReject = reason
}

func (b *Broker) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	px, ok := b.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: no quote for %s", broker.ErrUnavailable, symbol)
	}
	return px, nil
}

func (b *Broker) BuyingPower(ctx context.Context) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cash, nil
}

func (b *Broker) PositionQuantity(ctx context.Context, symbol string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.holdings[symbol], nil
}

func (b *Broker) Submit(ctx context.Context, action position.Action, symbol string, qty int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.nextReject != "" {
		reason := b.nextReject
		b.nextReject = ""
		return "", &broker.RejectedError{Reason: reason}
	}

	px, ok := b.prices[symbol]
	if !ok {
		return "", &broker.RejectedError{Reason: fmt.Sprintf("no market for %s", symbol)}
	}
	if qty < 1 {
		return "", &broker.RejectedError{Reason: "quantity must be at least 1"}
	}

	total := float64(qty) * px
	switch action {
	case position.Buy:
		if total > b.cash {
			return "", &broker.RejectedError{Reason: "insufficient buying power"}
		}
		b.cash -= total
		b.holdings[symbol] += qty
	case position.Sell:
		if b.holdings[symbol] < qty {
			return "", &broker.RejectedError{Reason: fmt.Sprintf("insufficient shares: have %d, want %d", b.holdings[symbol], qty)}
		}
		b.cash += total
		b.holdings[symbol] -= qty
	default:
		return "", &broker.RejectedError{Reason: fmt.Sprintf("unsupported action %q", action)}
	}

	return id.New(), nil
}

// Account returns a typed snapshot of the paper account.
func (b *Broker) Account(ctx context.Context) (broker.AccountSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	portfolio := b.cash
	for sym, qty := range b.holdings {
		portfolio += float64(qty) * b.prices[sym]
	}
	return broker.AccountSnapshot{
		BuyingPower:    b.cash,
		Cash:           b.cash,
		PortfolioValue: portfolio,
	}, nil
}
