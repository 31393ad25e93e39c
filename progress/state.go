package progress

import (
	"math"
	"strings"
	"time"
)

// Reason records which thresholds caused a firing.
type Reason uint8

const (
	// ReasonStep means the count reached a multiple of the step size.
	ReasonStep Reason = 1 << iota
	// ReasonInterval means the time threshold elapsed.
	ReasonInterval
)

func (r Reason) String() string {
	var parts []string
	if r&ReasonStep != 0 {
		parts = append(parts, "step")
	}
	if r&ReasonInterval != 0 {
		parts = append(parts, "interval")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// State is the snapshot handed to the reporting action each time a Logger
// fires. It is a value copied out of the Logger at firing time and holds no
// reference back into it.
//
// Only the raw anchors are stored; the deltas, rates and ETAs are computed on
// each call.
type State struct {
	count          int64
	startCount     int64
	now            time.Time
	startedAt      time.Time
	lastFiredAt    time.Time
	lastFiredCount int64
	max            *int64
	reason         Reason
}

// Count is the number of triggers processed so far.
func (s *State) Count() int64 { return s.count }

// StartCount is the count when timing started (normally 0).
func (s *State) StartCount() int64 { return s.startCount }

// Now is the clock reading for this firing.
func (s *State) Now() time.Time { return s.now }

// StartedAt is when timing started: the first Trigger, or an explicit Start.
func (s *State) StartedAt() time.Time { return s.startedAt }

// LastFiredAt is the time of the previous firing, or StartedAt if this is
// the first one.
func (s *State) LastFiredAt() time.Time { return s.lastFiredAt }

// LastFiredCount is the count at the previous firing, or StartCount if this
// is the first one.
func (s *State) LastFiredCount() int64 { return s.lastFiredCount }

// Max returns the configured expected total, if any.
func (s *State) Max() (int64, bool) {
	if s.max == nil {
		return 0, false
	}
	return *s.max, true
}

// Reason reports which thresholds fired.
func (s *State) Reason() Reason { return s.reason }

// CountDelta is the number of triggers since the previous firing.
func (s *State) CountDelta() int64 {
	return s.count - s.lastFiredCount
}

// TimeTotal is the time elapsed since timing started.
func (s *State) TimeTotal() time.Duration {
	return s.now.Sub(s.startedAt)
}

// TimeDelta is the time elapsed since the previous firing.
func (s *State) TimeDelta() time.Duration {
	return s.now.Sub(s.lastFiredAt)
}

// ShortRate is the triggers-per-second rate since the previous firing.
// ok is false when no time has elapsed, which can happen on a firing in
// the same instant as the previous anchor.
func (s *State) ShortRate() (rate float64, ok bool) {
	return perSecond(s.CountDelta(), s.TimeDelta())
}

// LongRate is the triggers-per-second rate since timing started.
// ok is false when no time has elapsed.
func (s *State) LongRate() (rate float64, ok bool) {
	return perSecond(s.count-s.startCount, s.TimeTotal())
}

// ShortETA estimates the time to reach Max at ShortRate.
//
// It returns ErrNoMax when no max was configured, whether or not the rate is
// defined. ok is false when ShortRate is undefined.
func (s *State) ShortETA() (eta time.Duration, ok bool, err error) {
	if s.max == nil {
		return 0, false, ErrNoMax
	}
	rate, ok := s.ShortRate()
	if !ok {
		return 0, false, nil
	}
	return s.remaining(rate), true, nil
}

// LongETA estimates the time to reach Max at LongRate. Errors and
// undefined values follow ShortETA.
func (s *State) LongETA() (eta time.Duration, ok bool, err error) {
	if s.max == nil {
		return 0, false, ErrNoMax
	}
	rate, ok := s.LongRate()
	if !ok {
		return 0, false, nil
	}
	return s.remaining(rate), true, nil
}

// remaining converts (max - count) / rate seconds to a duration. A zero rate
// (no triggers in the window) yields an infinite estimate, which saturates.
func (s *State) remaining(rate float64) time.Duration {
	seconds := float64(*s.max-s.count) / rate
	return secondsToDuration(seconds)
}

func perSecond(n int64, d time.Duration) (float64, bool) {
	if d == 0 {
		return 0, false
	}
	return float64(n) / d.Seconds(), true
}

func secondsToDuration(seconds float64) time.Duration {
	ns := math.Round(seconds * float64(time.Second))
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= float64(math.MaxInt64):
		return time.Duration(math.MaxInt64)
	case ns <= float64(math.MinInt64):
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}
