package paper

import (
	"context"
	"math"
	"math/rand"
	"sync"
)

// RandomWalkFeed is a deterministic simulated quote source for paper
// runs. Each LatestPrice call advances a seeded geometric random walk
// and publishes the new quote to the paper broker, so fills always match
// the price the engine just observed. Deterministic for a given seed.
type RandomWalkFeed struct {
	mu     sync.Mutex
	broker *Broker
	price  float64
	vol    float64
	rng    *rand.Rand
}

// NewRandomWalkFeed starts a walk at base with per-step volatility vol
// (e.g. 0.002 for 0.2% steps).
func NewRandomWalkFeed(b *Broker, base, vol float64, seed int64) *RandomWalkFeed {
	return &RandomWalkFeed{
		broker: b,
		price:  base,
		vol:    vol,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (f *RandomWalkFeed) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.price *= math.Exp(f.vol * f.rng.NormFloat64())
	f.broker.SetPrice(symbol, f.price)
	return f.price, nil
}
