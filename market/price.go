// Package market holds the basic price and calendar types shared by the
// decision engine.
package market

import "time"

// PricePoint is a single observed close price. Immutable once recorded.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// PercentChange returns the percent move from entry to current:
// ((current - entry) / entry) * 100.
func PercentChange(entry, current float64) float64 {
	if entry == 0 {
		return 0
	}
	return (current - entry) / entry * 100
}
