package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTradingDayHelpers(t *testing.T) {
	mon := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	sat := time.Date(2025, 3, 8, 14, 30, 0, 0, time.UTC)

	t.Run("weekdays are trading days", func(t *testing.T) {
		assert.True(t, IsTradingDay(mon))
		assert.False(t, IsTradingDay(sat))
		assert.False(t, IsTradingDay(sat.AddDate(0, 0, 1)))
	})

	t.Run("same calendar date", func(t *testing.T) {
		assert.True(t, SameDay(mon, mon.Add(6*time.Hour)))
		assert.False(t, SameDay(mon, mon.AddDate(0, 0, 1)))
	})

	t.Run("day truncation", func(t *testing.T) {
		assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), DayOf(mon))
	})
}

func TestTradingDaysAgo(t *testing.T) {
	t.Run("walks back weekday-only", func(t *testing.T) {
		// One trading day before Monday Mar 10 is Friday Mar 7.
		mon := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), TradingDaysAgo(mon, 1))
	})

	t.Run("five trading days spans a weekend", func(t *testing.T) {
		thu := time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC), TradingDaysAgo(thu, 5))
	})
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 4.0, PercentChange(50, 52), 1e-9)
	assert.InDelta(t, -0.5, PercentChange(100, 99.5), 1e-9)
	assert.Equal(t, 0.0, PercentChange(0, 10))
}
