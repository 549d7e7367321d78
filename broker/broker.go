// Package broker defines the external brokerage contracts the engine
// consumes. The core never touches a live API directly and never
// consumes untyped maps; every boundary crossing is a typed record.
package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/macdbot/position"
)

// ErrUnavailable is returned by MarketData when a quote cannot be
// fetched (network or API failure). The engine skips the cycle.
var ErrUnavailable = errors.New("market data unavailable")

// RejectedError reports a broker-side order refusal.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order rejected: %s", e.Reason)
}

// MarketData supplies the latest quote for a symbol.
type MarketData interface {
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

// AccountProvider exposes the account figures the engine needs for
// sizing and reconciliation.
type AccountProvider interface {
	BuyingPower(ctx context.Context) (float64, error)
	PositionQuantity(ctx context.Context, symbol string) (int, error)
}

// OrderExecutor submits market orders. Submit returns the broker order
// id on success and a *RejectedError when the broker refuses the order.
type OrderExecutor interface {
	Submit(ctx context.Context, action position.Action, symbol string, qty int) (orderID string, err error)
}

// AccountSnapshot is a typed view of the brokerage account.
type AccountSnapshot struct {
	BuyingPower    float64
	Cash           float64
	PortfolioValue float64
}
