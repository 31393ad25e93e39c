package reporter

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"github.com/kornysietsma/progress-logger/progress"
)

const defaultChannelBuffer = 100

// ChannelReporter sends progress events to a Go channel for programmatic
// consumption, e.g. a custom UI or a test.
//
// Report never blocks. When the consumer falls behind and the buffer is
// full, the oldest queued event is discarded to make room, so a slow reader
// always catches up to the latest count and never misses the Final event.
// Discarded events are counted (see DroppedEvents).
//
// The channel closes when the context passed to NewChannelReporter is
// cancelled, so consumers can simply range over Events().
//
// Example:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	reporter := reporter.NewChannelReporter(ctx, reporter.WithBufferSize(10))
//
//	go func() {
//	    for event := range reporter.Events() {
//	        fmt.Printf("%d done, %.1f%%\n", event.Count, event.Percent)
//	    }
//	}()
//
// This reporter is safe for concurrent use.
type ChannelReporter struct {
	mu      sync.Mutex
	events  chan progress.Event
	closed  bool
	dropped uint64
	size    int
	log     logr.Logger
}

// ChannelReporterOption is a function that configures a ChannelReporter.
type ChannelReporterOption func(*ChannelReporter)

// WithLogger logs each discarded event at V(1).
func WithLogger(log logr.Logger) ChannelReporterOption {
	return func(r *ChannelReporter) {
		r.log = log
	}
}

// WithBufferSize sets how many events may wait for the consumer. Values
// below 1 are ignored.
func WithBufferSize(n int) ChannelReporterOption {
	return func(r *ChannelReporter) {
		if n > 0 {
			r.size = n
		}
	}
}

// NewChannelReporter creates a new channel-based progress reporter whose
// channel closes when ctx is done.
func NewChannelReporter(ctx context.Context, opts ...ChannelReporterOption) *ChannelReporter {
	r := &ChannelReporter{
		size: defaultChannelBuffer,
		log:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.events = make(chan progress.Event, r.size)

	context.AfterFunc(ctx, r.close)
	return r
}

func (c *ChannelReporter) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	close(c.events)
}

// Report queues event, displacing the oldest queued one if the buffer is
// full. After the context is cancelled Report is a no-op.
func (c *ChannelReporter) Report(event progress.Event) {
	normalize(&event)

	// Only Report sends, and only under the lock, so after one receive there
	// is room for the send below.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.events <- event:
		return
	default:
	}

	select {
	case old := <-c.events:
		c.dropped++
		c.log.V(1).Info("progress event dropped due to slow consumer",
			"name", old.Name,
			"count", old.Count,
			"replacedBy", event.Count,
			"total_dropped", c.dropped,
		)
	default:
		// the consumer just made room
	}
	c.events <- event
}

// Events returns the channel to range over.
func (c *ChannelReporter) Events() <-chan progress.Event {
	return c.events
}

// DroppedEvents returns the number of events discarded because the buffer
// was full.
func (c *ChannelReporter) DroppedEvents() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
