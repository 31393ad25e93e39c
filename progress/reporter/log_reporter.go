package reporter

import (
	"github.com/go-logr/logr"
	"github.com/kornysietsma/progress-logger/progress"
)

// LogReporter writes each event as one structured log entry.
//
// This is the classic use of a progress logger, a line in the application
// log every N records, with the statistics as key/value pairs so they can
// be queried later.
//
// Example (logrus text formatter):
//
//	level=info msg=progress name=rows count=20 countDelta=10 timeDelta=10 shortRate=1 longRate=0.168 max=100 percent=20 shortEta=80 longEta=476
type LogReporter struct {
	log     logr.Logger
	level   int
	message string
}

// LogReporterOption configures a LogReporter.
type LogReporterOption func(*LogReporter)

// WithLevel sets the logr verbosity used for entries. Defaults to 0.
func WithLevel(level int) LogReporterOption {
	return func(r *LogReporter) {
		r.level = level
	}
}

// WithMessage replaces the default "progress" log message.
func WithMessage(msg string) LogReporterOption {
	return func(r *LogReporter) {
		r.message = msg
	}
}

// NewLogReporter creates a reporter that logs to log.
func NewLogReporter(log logr.Logger, opts ...LogReporterOption) *LogReporter {
	r := &LogReporter{
		log:     log,
		message: "progress",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report logs the event. Undefined rates and ETAs are left out.
func (l *LogReporter) Report(event progress.Event) {
	normalize(&event)

	kv := []interface{}{
		"count", event.Count,
		"countDelta", event.CountDelta,
		"timeTotal", event.TimeTotal,
		"timeDelta", event.TimeDelta,
	}
	if event.Name != "" {
		kv = append([]interface{}{"name", event.Name}, kv...)
	}
	if event.Reason != "" {
		kv = append(kv, "reason", event.Reason)
	}
	if event.Final {
		kv = append(kv, "final", true)
	}
	if event.ShortRate != nil {
		kv = append(kv, "shortRate", *event.ShortRate)
	}
	if event.LongRate != nil {
		kv = append(kv, "longRate", *event.LongRate)
	}
	if event.Max > 0 {
		kv = append(kv, "max", event.Max, "percent", event.Percent)
	}
	if event.ShortETA != nil {
		kv = append(kv, "shortEta", *event.ShortETA)
	}
	if event.LongETA != nil {
		kv = append(kv, "longEta", *event.LongETA)
	}
	l.log.V(l.level).Info(l.message, kv...)
}
