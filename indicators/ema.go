// Package indicators provides streaming technical indicators for the
// decision engine. All indicators are deterministic: feeding the same
// value sequence from a fresh instance always produces the same outputs.
package indicators

import "fmt"

// ExponentialMA is a streaming Exponential Moving Average. The first
// `period` observations are averaged arithmetically to seed the EMA;
// every later observation applies the recursive formula
// ema' = v*k + ema*(1-k) with k = 2/(period+1).
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates a streaming EMA with the given period.
func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

// Warmup returns how many updates are needed before Ready() is true.
func (e *ExponentialMA) Warmup() int {
	return e.period
}

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(v float64) {
	if e.count < e.period {
		// During warmup, accumulate sum for the initial SMA seed.
		e.warmupSum += v
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = v*e.multiplier + e.ema*(1-e.multiplier)
}

// Ready reports whether Value() is meaningful (seeding window elapsed).
func (e *ExponentialMA) Ready() bool {
	return e.count >= e.period
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
