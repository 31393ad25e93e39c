package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kornysietsma/progress-logger/progress"
)

// TextReporter writes progress events as human-readable text with timestamps.
//
// Each event becomes one line, suitable for terminals and log files alike.
// The short rate/ETA come first since they track the current throughput;
// the long ones follow as "avg".
//
// Example output:
//
//	[17:06:14] rows: 10/100 (10.0%) +10 in 1m49s, 0.09/s avg 0.09/s, eta 16m21s avg 16m21s
//	[17:06:24] rows: 20/100 (20.0%) +10 in 10s, 1.00/s avg 0.17/s, eta 1m20s avg 7m56s
//	[17:07:44] rows: finished 100/100 (100.0%) in 3m19s, avg 0.50/s
//
// Usage:
//
//	p, _ := progress.New(progress.ReportNamed("rows", reporter.NewTextReporter(os.Stderr)),
//	    progress.WithStep(10), progress.WithMax(100))
type TextReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewTextReporter creates a new text progress reporter that writes to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{
		writer: w,
	}
}

// Report writes a progress event as one line of text.
//
// This method is safe for concurrent use.
func (t *TextReporter) Report(event progress.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	normalize(&event)
	fmt.Fprintf(t.writer, "[%s] %s\n", event.Timestamp.Format("15:04:05"), describe(event))
}

// describe renders the event body shared by the text and progress bar
// reporters.
func describe(event progress.Event) string {
	if event.Final {
		return fmt.Sprintf("%s: finished %s in %s, avg %s",
			label(event),
			formatCount(event),
			formatSeconds(event.TimeTotal),
			formatRate(event.LongRate))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s +%d in %s, %s avg %s",
		label(event),
		formatCount(event),
		event.CountDelta,
		formatSeconds(event.TimeDelta),
		formatRate(event.ShortRate),
		formatRate(event.LongRate))
	if event.Max > 0 {
		fmt.Fprintf(&b, ", eta %s avg %s", formatETA(event.ShortETA), formatETA(event.LongETA))
	}
	return b.String()
}
