package market

import "time"

// IsTradingDay reports whether t falls on a weekday. Exchange holidays are
// not modeled; the compliance window only needs weekday granularity.
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayOf truncates t to midnight of its calendar date, preserving location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TradingDaysAgo walks back n trading days (weekday-only) from t and
// returns the resulting date at midnight. Weekends are skipped, not
// counted, so "5 trading days back" from a Monday lands on the Monday of
// the previous week.
func TradingDaysAgo(t time.Time, n int) time.Time {
	d := DayOf(t)
	for steps := 0; steps < n; {
		d = d.AddDate(0, 0, -1)
		if IsTradingDay(d) {
			steps++
		}
	}
	return d
}
