package progress

import "time"

// Clock supplies the current instant to a Logger.
//
// Successive calls must not go backwards, otherwise deltas, rates and ETAs
// turn negative. Tests substitute progresstest.Clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock. time.Now carries a monotonic reading, so
// durations between its values are safe from wall clock adjustments.
var SystemClock Clock = ClockFunc(time.Now)
