package analytics

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when a date range starts after it ends.
var ErrInvalidRange = errors.New("invalid date range: start is after end")

const day = 24 * time.Hour

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// DateRange is an inclusive time window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether t lies within [Start, End].
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Previous returns the window of the same length ending just before Start.
func (r DateRange) Previous() DateRange {
	length := r.End.Sub(r.Start)
	return DateRange{
		Start: r.Start.Add(-length - time.Nanosecond),
		End:   r.Start.Add(-time.Nanosecond),
	}
}

// TrailingDays is the window [now - days, now].
func TrailingDays(now time.Time, days int) DateRange {
	return DateRange{Start: now.AddDate(0, 0, -days), End: now}
}

// daysBetween returns ceil((to - from) / 1 day).
func daysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := d / day
	if d%day > 0 {
		days++
	}
	return int(days)
}

func sameDay(a, b time.Time) bool {
	return a.In(b.Location()).Format(time.DateOnly) == b.Format(time.DateOnly)
}
