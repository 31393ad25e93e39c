package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kornysietsma/progress-logger/progress"
	"github.com/kornysietsma/progress-logger/progress/reporter"
)

const (
	totalRecords = 200
	slowRecords  = 60
)

// Demo program that shows the short and long rates drifting apart on a
// workload that starts slowly and then speeds up.
func main() {
	fmt.Println("=== Progress Logger Demo ===")

	ctx, cancel := context.WithCancel(context.Background())
	events := reporter.NewChannelReporter(ctx)

	logger, err := progress.New(
		progress.ReportNamed("records", events),
		progress.WithStep(20),
		progress.WithSeconds(1),
		progress.WithMax(totalRecords),
	)
	if err != nil {
		fmt.Printf("unable to create progress logger: %v\n", err)
		cancel()
		return
	}

	go func() {
		defer cancel()
		simulateImport(logger)

		state, ok := logger.Snapshot()
		if !ok {
			return
		}
		final := progress.NewEvent(state)
		final.Name = "records"
		final.Final = true
		events.Report(final)
	}()

	displayProgress(events)

	fmt.Println("\n=== Demo Complete ===")
}

// simulateImport processes records slowly at first, e.g. while caches warm
// up, then quickly.
func simulateImport(logger *progress.Logger) {
	for i := 1; i <= totalRecords; i++ {
		if i <= slowRecords {
			time.Sleep(40 * time.Millisecond)
		} else {
			time.Sleep(5 * time.Millisecond)
		}
		if err := logger.Trigger(); err != nil {
			fmt.Printf("progress action failed: %v\n", err)
		}
	}
}

// displayProgress prints a bar with both rates and ETAs for each firing.
func displayProgress(events *reporter.ChannelReporter) {
	for event := range events.Events() {
		if event.Final {
			fmt.Printf("\n%d records in %.1fs, %.1f/s overall\n",
				event.Count, event.TimeTotal, value(event.LongRate))
			continue
		}
		fmt.Printf("%s %3.0f%% (%d/%d) [%s] now %6.1f/s eta %5.1fs | avg %6.1f/s eta %5.1fs\n",
			drawProgressBar(event.Percent, 30),
			event.Percent,
			event.Count,
			event.Max,
			event.Reason,
			value(event.ShortRate),
			value(event.ShortETA),
			value(event.LongRate),
			value(event.LongETA))
	}
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// drawProgressBar creates a visual progress bar
func drawProgressBar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s]", bar)
}
