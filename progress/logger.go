package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// Action is invoked synchronously by Trigger whenever a threshold is met.
//
// It may do anything: write a log line, flush a database, push to a
// dispatcher. A returned error is passed back unchanged to the caller of
// Trigger.
type Action func(state *State) error

// Logger counts units of work and decides, on each Trigger, whether enough
// work or enough time has passed to run its Action.
//
// Two thresholds are supported and may be combined:
//   - a step: fire when the count is a multiple of the step size
//   - an interval: fire when the interval has elapsed since the last
//     time-based firing
//
// The time threshold keeps its own clock. A firing caused only by the step
// does not push back the next time-based firing.
//
// Example:
//
//	p, err := progress.New(func(s *progress.State) error {
//	    log.Info("processed rows", "count", s.Count())
//	    return nil
//	}, progress.WithStep(100000), progress.WithMinutes(30))
//	if err != nil {
//	    return err
//	}
//	for rows.Next() {
//	    // ...
//	    if err := p.Trigger(); err != nil {
//	        return err
//	    }
//	}
//
// Logger is not safe for concurrent use. Callers sharing one across
// goroutines must serialize Trigger and Start themselves.
type Logger struct {
	action Action
	clock  Clock
	log    logr.Logger

	step     int64
	interval time.Duration
	max      *int64

	countBased bool
	timeBased  bool

	count           int64
	started         bool
	startCount      int64
	startedAt       time.Time
	lastFiredAt     time.Time
	lastFiredCount  int64
	lastTimeCheckAt time.Time
}

// New creates a Logger that runs action when the configured thresholds are
// met. At least one of WithStep, WithSeconds, WithMinutes, WithHours or
// WithInterval is required.
//
// All problems with the options are reported together; each is a
// *ConfigurationError.
//
// Timing does not start here. It starts on the first Trigger, so setup time
// spent before the loop (opening cursors and so on) does not count, or
// explicitly with Start.
func New(action Action, options ...Option) (*Logger, error) {
	validationErrors := []error{}
	opts := loggerOptions{}
	for _, apply := range options {
		if err := apply(&opts); err != nil {
			validationErrors = append(validationErrors, err)
		}
	}
	if action == nil {
		validationErrors = append(validationErrors, ErrNoAction)
	}
	if opts.step == nil && !opts.timeBased && !hasStepError(validationErrors) {
		validationErrors = append(validationErrors, ErrNoThreshold)
	}
	if opts.timeBased && !opts.validInterval() {
		validationErrors = append(validationErrors, ErrInvalidInterval)
	}
	if len(validationErrors) > 0 {
		return nil, fmt.Errorf("unable to create progress logger: %w", errors.Join(validationErrors...))
	}

	l := &Logger{
		action:    action,
		clock:     opts.clock,
		log:       opts.log,
		max:       opts.max,
		timeBased: opts.timeBased,
	}
	if l.clock == nil {
		l.clock = SystemClock
	}
	if l.log.IsZero() {
		l.log = logr.Discard()
	}
	if opts.step != nil {
		l.countBased = true
		l.step = *opts.step
	}
	if opts.timeBased {
		l.interval = opts.interval()
	}
	return l, nil
}

// A rejected step was still an attempt at a threshold; don't pile a
// "no threshold" error on top of it.
func hasStepError(errs []error) bool {
	for _, err := range errs {
		if errors.Is(err, ErrInvalidStep) {
			return true
		}
	}
	return false
}

// Count returns the number of Trigger calls so far.
func (l *Logger) Count() int64 {
	return l.count
}

// Started reports whether timing has started.
func (l *Logger) Started() bool {
	return l.started
}

// Start starts timing now. See StartAt.
func (l *Logger) Start() {
	l.StartAt(l.clock.Now())
}

// StartAt starts timing at t, using the current count as the starting count.
//
// Calling it again begins a new measurement epoch: every anchor is moved to
// t and the current count, so rates and ETAs are measured from there.
func (l *Logger) StartAt(t time.Time) {
	l.started = true
	l.startedAt = t
	l.lastFiredAt = t
	l.lastTimeCheckAt = t
	l.startCount = l.count
	l.lastFiredCount = l.count
	l.log.V(5).Info("progress timing started", "count", l.count, "at", t)
}

// Trigger records one unit of work and runs the Action if a threshold is
// met. When both thresholds are met on the same call the Action runs once.
//
// If the Action returns an error it is returned as is, and the firing is not
// recorded: the next firing reports deltas from the previous successful one.
func (l *Logger) Trigger() error {
	if !l.started {
		// Absorbs whatever count existed before the first call, usually 0.
		l.Start()
	}
	l.count++
	now := l.clock.Now()

	var reason Reason
	if l.timeBased && now.Sub(l.lastTimeCheckAt) > l.interval {
		reason |= ReasonInterval
	}
	if l.countBased && l.count%l.step == 0 {
		reason |= ReasonStep
	}
	if reason == 0 {
		return nil
	}

	state := l.snapshot(now, reason)
	l.log.V(5).Info("progress threshold reached", "count", l.count, "reason", reason.String())
	if err := l.action(state); err != nil {
		return err
	}

	l.lastFiredAt = now
	l.lastFiredCount = l.count
	if reason&ReasonInterval != 0 {
		l.lastTimeCheckAt = now
	}
	return nil
}

// Snapshot returns the State as of now without firing the Action or moving
// any anchor; its Reason is zero. It is meant for a closing summary after
// the loop ends. ok is false if timing never started.
func (l *Logger) Snapshot() (state *State, ok bool) {
	if !l.started {
		return nil, false
	}
	return l.snapshot(l.clock.Now(), 0), true
}

func (l *Logger) snapshot(now time.Time, reason Reason) *State {
	s := &State{
		count:          l.count,
		startCount:     l.startCount,
		now:            now,
		startedAt:      l.startedAt,
		lastFiredAt:    l.lastFiredAt,
		lastFiredCount: l.lastFiredCount,
		reason:         reason,
	}
	if l.max != nil {
		max := *l.max
		s.max = &max
	}
	return s
}
