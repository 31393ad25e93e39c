package reporter

import (
	"fmt"
	"time"

	"github.com/kornysietsma/progress-logger/progress"
)

// normalize fills in values a hand-built event may lack.
// - Sets Timestamp to now if zero
// - Calculates Percent from Count/Max if Percent is zero and Max > 0
func normalize(e *progress.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Percent == 0.0 && e.Max > 0 {
		e.Percent = float64(e.Count) / float64(e.Max) * 100.0
	}
}

func label(e progress.Event) string {
	if e.Name != "" {
		return e.Name
	}
	return "processed"
}

func formatCount(e progress.Event) string {
	if e.Max > 0 {
		return fmt.Sprintf("%d/%d (%.1f%%)", e.Count, e.Max, e.Percent)
	}
	return fmt.Sprintf("%d", e.Count)
}

func formatRate(rate *float64) string {
	if rate == nil {
		return "-/s"
	}
	return fmt.Sprintf("%.2f/s", *rate)
}

// formatSeconds renders a seconds value as a rounded duration: whole
// seconds from one second up, milliseconds below.
func formatSeconds(seconds float64) string {
	d := progress.Duration(seconds)
	if d >= time.Second || d <= -time.Second {
		return d.Round(time.Second).String()
	}
	return d.Round(time.Millisecond).String()
}

func formatETA(eta *float64) string {
	if eta == nil {
		return "-"
	}
	return formatSeconds(*eta)
}
