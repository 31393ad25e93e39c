package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/kornysietsma/progress-logger/progress"
)

// JSONReporter writes progress events as newline-delimited JSON (NDJSON).
//
// Each line is a complete JSON object, so the stream can be tailed, shipped
// to a log aggregator or parsed line by line in scripts.
//
// Example output:
//
//	{"timestamp":"2024-10-29T17:06:14Z","name":"rows","reason":"step","count":10,"countDelta":10,"max":100,"percent":10,"timeTotal":109,"timeDelta":109,"shortRate":0.0917,"longRate":0.0917,"shortEta":981,"longEta":981}
//
// Usage:
//
//	reporter := reporter.NewJSONReporter(os.Stderr)
type JSONReporter struct {
	mu      sync.Mutex
	encoder *json.Encoder
	err     error
}

// NewJSONReporter creates a new JSON progress reporter that writes to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	encoder := json.NewEncoder(w)
	// names and labels are free text; keep them readable
	encoder.SetEscapeHTML(false)
	return &JSONReporter{encoder: encoder}
}

// Report writes a progress event as a JSON line.
//
// A failing progress sink must not abort the work being measured, so the
// first encoding or write error is kept for Err and later events are still
// attempted.
//
// This method is safe for concurrent use.
func (j *JSONReporter) Report(event progress.Event) {
	normalize(&event)

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.encoder.Encode(event); err != nil && j.err == nil {
		j.err = fmt.Errorf("unable to write progress event %d: %w", event.Count, err)
	}
}

// Err returns the first error met while writing, if any.
func (j *JSONReporter) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
