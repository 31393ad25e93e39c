// Package collector provides the non-blocking hand-off between a Logger's
// action and a progress.Progress hub.
package collector

import (
	"sync/atomic"

	"github.com/kornysietsma/progress-logger/progress"
)

// DefaultBufferSize is the channel capacity used by New.
const DefaultBufferSize = 100

var nextID atomic.Int64

// collector forwards every event it is given to a buffered channel that a
// Progress hub subscribes to.
//
// Report never blocks: when the buffer is full the event is dropped and
// counted, so a stalled reporter cannot stall the loop calling Trigger.
type collector struct {
	id      int
	ch      chan progress.Event
	dropped atomic.Uint64
}

// Collector is a progress.Collector that also reports how many events it
// had to drop.
type Collector interface {
	progress.Collector
	Dropped() uint64
}

// New creates a collector with DefaultBufferSize.
//
// Example:
//
//	col := collector.New()
//	prog, _ := progress.NewProgress(
//	    progress.WithCollectors(col),
//	    progress.WithReporters(reporter.NewTextReporter(os.Stderr)),
//	)
//	p, _ := progress.New(progress.ReportTo(col), progress.WithStep(1000))
func New() Collector {
	return NewWithBuffer(DefaultBufferSize)
}

// NewWithBuffer creates a collector whose channel holds size events.
// Sizes below 1 are raised to 1.
func NewWithBuffer(size int) Collector {
	if size < 1 {
		size = 1
	}
	return &collector{
		id: int(nextID.Add(1)),
		ch: make(chan progress.Event, size),
	}
}

// ID returns the unique identifier for this collector.
func (c *collector) ID() int {
	return c.id
}

// CollectChannel returns the channel that Progress reads events from.
func (c *collector) CollectChannel() chan progress.Event {
	return c.ch
}

// Dropped returns the number of events discarded because the buffer was full.
func (c *collector) Dropped() uint64 {
	return c.dropped.Load()
}

// Report queues an event without blocking.
func (c *collector) Report(event progress.Event) {
	select {
	case c.ch <- event:
	default:
		c.dropped.Add(1)
	}
}
