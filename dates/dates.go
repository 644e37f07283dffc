package dates

import (
	"errors"
	"fmt"
	"time"
)

// Clock supplies the current time so that code depending on "now"
// stays testable.
type Clock interface {
	Now() time.Time
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// Wall is the real clock.
var Wall Clock = clockFunc(time.Now)

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock {
	return clockFunc(func() time.Time { return t })
}

// StartOfDay returns the instant of local midnight of the calendar day
// that d falls on, expressed in UTC. The calendar day is taken in d's
// own location.
func StartOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location()).UTC()
}

// EndOfDay returns the last second of the calendar day that d falls
// on, expressed in UTC. The window must be exact to the second since
// it carries deadline semantics.
func EndOfDay(d time.Time) time.Time {
	return StartOfDay(d).Add(24*time.Hour - time.Second)
}

// DaysBetween counts whole days from start to end including both
// boundary days.
func DaysBetween(start, end time.Time) int {
	return int(end.Add(24*time.Hour).Sub(start).Hours() / 24)
}

// ParseWindow turns a pair of "2006-01-02" calendar dates in loc into
// UTC day bounds, rejecting a window that ends before it starts. The
// arithmetic helpers below assume well-formed input, so ordering is
// checked here at the boundary.
func ParseWindow(startDate, endDate string, loc *time.Location) (start, end time.Time, err error) {
	s, err := time.ParseInLocation("2006-01-02", startDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start date: %w", err)
	}
	e, err := time.ParseInLocation("2006-01-02", endDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing end date: %w", err)
	}

	start, end = StartOfDay(s), EndOfDay(e)
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date cannot be before start date")
	}
	return start, end, nil
}

// Remaining returns the signed duration from now until target;
// negative once the target has passed.
func Remaining(clock Clock, target time.Time) time.Duration {
	return target.Sub(clock.Now().UTC())
}

// HasEnded reports whether target is strictly in the past.
func HasEnded(clock Clock, target time.Time) bool {
	return target.Before(clock.Now().UTC())
}

// IsUpcoming reports whether target is strictly in the future.
func IsUpcoming(clock Clock, target time.Time) bool {
	return clock.Now().UTC().Before(target)
}

// IsToday reports whether target falls on today's calendar day when
// both are viewed in loc.
func IsToday(clock Clock, target time.Time, loc *time.Location) bool {
	ty, tm, td := target.In(loc).Date()
	ny, nm, nd := clock.Now().In(loc).Date()
	return ty == ny && tm == nm && td == nd
}
