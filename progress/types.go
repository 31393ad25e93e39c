package progress

import (
	"time"
)

// ProgressInterface defines the contract for managing collector subscriptions.
//
// It is implemented by Progress and allows collectors to be added or
// removed at runtime.
type ProgressInterface interface {
	// Subscribe starts receiving events from a collector.
	Subscribe(collector Collector)

	// Unsubscribe stops receiving events from a collector.
	Unsubscribe(collector Collector)
}

// Reporter is the interface for outputting progress events.
//
// Reporters format an Event built from a State and write it somewhere:
//   - TextReporter: human-readable lines with timestamps
//   - JSONReporter: NDJSON for log shippers and scripts
//   - ProgressBarReporter: an in-place terminal bar
//   - LogReporter: one structured logr line per event
//   - ChannelReporter: a Go channel for programmatic use
//   - PrometheusReporter, TraceReporter: metrics and span events
//   - NoopReporter: discards events
//
// A Reporter can be called straight from a Logger's Action through ReportTo,
// in which case it runs on the Trigger goroutine, or behind a Progress hub,
// in which case it runs on its own worker goroutine. Implementations in this
// module are safe for concurrent use.
type Reporter interface {
	Report(event Event)
}

// Collector receives events and exposes them on a channel that Progress
// subscribes to. It decouples the goroutine calling Trigger from slow
// reporters: Report must not block.
type Collector interface {
	Reporter

	// ID returns a unique identifier used for subscription management.
	ID() int

	// CollectChannel returns the channel from which Progress reads events.
	CollectChannel() chan Event
}

// Event is the serializable form of a State.
//
// Durations are expressed in seconds so the JSON form is easy to consume
// outside Go. Values that are undefined for this firing (rates when no time
// has passed, ETAs without a max) are nil and omitted from JSON.
type Event struct {
	// Timestamp is the firing time (State.Now).
	Timestamp time.Time `json:"timestamp"`

	// Name describes what is being counted (e.g. "rows"). Optional.
	Name string `json:"name,omitempty"`

	// Reason is "step", "interval" or "step+interval". Empty for summary
	// events built from Logger.Snapshot.
	Reason string `json:"reason,omitempty"`

	// Final marks the closing summary emitted after the work loop.
	Final bool `json:"final,omitempty"`

	Count      int64 `json:"count"`
	CountDelta int64 `json:"countDelta"`

	// Max is the expected total, zero when not configured.
	Max int64 `json:"max,omitempty"`

	// Percent is Count/Max*100, zero when Max is not configured.
	Percent float64 `json:"percent,omitempty"`

	// TimeTotal and TimeDelta are in seconds.
	TimeTotal float64 `json:"timeTotal"`
	TimeDelta float64 `json:"timeDelta"`

	// Rates are triggers per second.
	ShortRate *float64 `json:"shortRate,omitempty"`
	LongRate  *float64 `json:"longRate,omitempty"`

	// ETAs are in seconds.
	ShortETA *float64 `json:"shortEta,omitempty"`
	LongETA  *float64 `json:"longEta,omitempty"`
}

// Duration converts one of the Event's second values back to a Duration.
func Duration(seconds float64) time.Duration {
	return secondsToDuration(seconds)
}
