package analytics

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned for tokens outside the supported
// vocabulary. It is a client error, never a server fault.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a resolved [Start, End] range. Both boundaries are
// inclusive: storage filters compare transaction dates with >= Start
// and <= End. All periods are pinned to UTC.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// periodDays maps the symbolic tokens to rolling-window lengths in
// days. "1y" is a fixed 365 days, not a calendar year.
var periodDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

// ResolvePeriod maps a symbolic period token to a concrete rolling
// window ending at now.
func ResolvePeriod(token string, now time.Time) (Period, error) {
	days, ok := periodDays[token]
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, token)
	}
	end := now.UTC()
	return Period{Start: end.AddDate(0, 0, -days), End: end}, nil
}

// ResolveMonthPair returns the current and immediately preceding UTC
// calendar months. The two periods are adjacent with no gap and no
// overlap, and the call always succeeds.
func ResolveMonthPair(now time.Time) (current, previous Period) {
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstOfNext := firstOfMonth.AddDate(0, 1, 0)
	firstOfPrev := firstOfMonth.AddDate(0, -1, 0)
	current = Period{Start: firstOfMonth, End: firstOfNext.Add(-time.Nanosecond)}
	previous = Period{Start: firstOfPrev, End: firstOfMonth.Add(-time.Nanosecond)}
	return current, previous
}
