package progress

// NoopReporter discards every event.
//
// Progress falls back to it when created without reporters, and the CLIs use
// it when --progress-output is not set, so the Logger still counts without
// producing output.
type NoopReporter struct{}

// NewNoopReporter creates a new no-op progress reporter.
func NewNoopReporter() *NoopReporter {
	return &NoopReporter{}
}

// Report discards the event.
func (n *NoopReporter) Report(event Event) {}
