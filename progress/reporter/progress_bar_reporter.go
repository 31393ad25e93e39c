package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kornysietsma/progress-logger/progress"
)

// ProgressBarReporter writes progress as a visual progress bar that updates
// in place.
//
// With a max count it draws a bar with the short rate and ETA; without one
// it keeps a running counter on a single line. Lines are redrawn using
// carriage returns, so this reporter is meant for TTY output. For pipes and
// files use TextReporter or JSONReporter.
//
// Example output:
//
//	rows  42% |██████████░░░░░░░░░░░░░░░| 42/100  1.00/s  eta 58s
//	rows 1250  12.40/s
//
// The reporter is thread-safe.
type ProgressBarReporter struct {
	writer      io.Writer
	mu          sync.Mutex
	barWidth    int
	lastLineLen int
}

// NewProgressBarReporter creates a new progress bar reporter that writes to w.
// The bar is 25 characters wide.
func NewProgressBarReporter(w io.Writer) *ProgressBarReporter {
	return &ProgressBarReporter{
		writer:   w,
		barWidth: 25,
	}
}

// Report redraws the bar for event. Final events and events reaching the
// max end the line, leaving the last state visible.
//
// This method is safe for concurrent use.
func (p *ProgressBarReporter) Report(event progress.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	normalize(&event)

	if event.Final {
		p.clearLine()
		fmt.Fprintf(p.writer, "%s\n", describe(event))
		return
	}

	var line string
	if event.Max > 0 {
		line = p.buildProgressBar(event)
	} else {
		line = fmt.Sprintf("%s %d  %s", label(event), event.Count, formatRate(event.ShortRate))
	}
	p.redraw(line)

	if event.Max > 0 && event.Count >= event.Max {
		fmt.Fprint(p.writer, "\n")
		p.lastLineLen = 0
	}
}

// redraw overwrites the previous line with line, without a newline.
func (p *ProgressBarReporter) redraw(line string) {
	p.clearLine()
	fmt.Fprint(p.writer, line)
	p.lastLineLen = utf8.RuneCountInString(line)
}

// buildProgressBar returns a string like:
// "rows  42% |██████████░░░░░░░░░░░░░░░| 42/100  1.00/s  eta 58s"
func (p *ProgressBarReporter) buildProgressBar(event progress.Event) string {
	filledWidth := int(float64(p.barWidth) * event.Percent / 100.0)
	if filledWidth > p.barWidth {
		filledWidth = p.barWidth
	}
	if filledWidth < 0 {
		filledWidth = 0
	}
	emptyWidth := p.barWidth - filledWidth

	visualBar := fmt.Sprintf("|%s%s|", strings.Repeat("█", filledWidth), strings.Repeat("░", emptyWidth))
	percentStr := fmt.Sprintf("%3d%%", int(event.Percent))
	countStr := fmt.Sprintf("%d/%d", event.Count, event.Max)

	return fmt.Sprintf("%s %s %s %s  %s  eta %s",
		label(event), percentStr, visualBar, countStr,
		formatRate(event.ShortRate), formatETA(event.ShortETA))
}

// clearLine blanks the current bar line if one is displayed.
func (p *ProgressBarReporter) clearLine() {
	if p.lastLineLen > 0 {
		fmt.Fprint(p.writer, "\r")
		fmt.Fprint(p.writer, strings.Repeat(" ", p.lastLineLen))
		fmt.Fprint(p.writer, "\r")
		p.lastLineLen = 0
	}
}
