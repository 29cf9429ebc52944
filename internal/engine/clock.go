package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// It is used by the Generator to determine "today" once per evaluation.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant. The CLI uses it for -today.
type FixedClock struct {
	At time.Time
}

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time {
	return c.At
}

// Today converts the clock's current instant to the civil date in loc.
// This is the only place where a wall clock and a timezone meet; everything
// downstream works on timezone-naive civil dates.
func Today(clock Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return CivilDate(clock.Now().In(loc))
}
