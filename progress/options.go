package progress

import (
	"time"

	"github.com/go-logr/logr"
)

// Option configures a Logger during New. Options that can be checked on
// their own return their validation error directly; cross-option checks
// (at least one threshold, the summed interval) happen in New.
type Option func(opts *loggerOptions) error

type loggerOptions struct {
	step *int64
	max  *int64

	// timeBased is set as soon as any seconds/minutes/hours component is
	// given, even a zero one, so that a zero total is reported as an
	// invalid interval rather than a missing threshold.
	timeBased       bool
	intervalSeconds float64

	clock Clock
	log   logr.Logger
}

// validInterval reports whether the summed time components are positive.
func (o *loggerOptions) validInterval() bool {
	return o.intervalSeconds > 0
}

// interval resolves a valid summed interval to a duration, no shorter than
// a nanosecond and saturating at the longest representable one.
func (o *loggerOptions) interval() time.Duration {
	if d := secondsToDuration(o.intervalSeconds); d > 0 {
		return d
	}
	return time.Nanosecond
}

// WithStep fires the action every n calls to Trigger.
func WithStep(n int64) Option {
	return func(opts *loggerOptions) error {
		if n <= 0 {
			return ErrInvalidStep
		}
		opts.step = &n
		return nil
	}
}

// WithSeconds adds s seconds to the time threshold.
func WithSeconds(s float64) Option {
	return addInterval(s)
}

// WithMinutes adds m minutes to the time threshold.
func WithMinutes(m float64) Option {
	return addInterval(m * 60)
}

// WithHours adds h hours to the time threshold.
func WithHours(h float64) Option {
	return addInterval(h * 60 * 60)
}

// WithInterval adds d to the time threshold.
func WithInterval(d time.Duration) Option {
	return addInterval(d.Seconds())
}

// Components may be negative; only the sum has to be positive.
func addInterval(seconds float64) Option {
	return func(opts *loggerOptions) error {
		opts.timeBased = true
		opts.intervalSeconds += seconds
		return nil
	}
}

// WithMax sets the expected total number of triggers, used for ETAs.
func WithMax(n int64) Option {
	return func(opts *loggerOptions) error {
		if n <= 0 {
			return ErrInvalidMax
		}
		opts.max = &n
		return nil
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(opts *loggerOptions) error {
		if c == nil {
			return ErrNilClock
		}
		opts.clock = c
		return nil
	}
}

func WithLogger(log logr.Logger) Option {
	return func(opts *loggerOptions) error {
		opts.log = log
		return nil
	}
}
