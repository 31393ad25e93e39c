package lib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	logrusr "github.com/bombsimon/logrusr/v3"
	"github.com/go-logr/logr"
	"github.com/kornysietsma/progress-logger/progress"
	"github.com/kornysietsma/progress-logger/progress/collector"
	"github.com/kornysietsma/progress-logger/progress/reporter"
	"github.com/kornysietsma/progress-logger/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Settings holds the flags shared by the progress binaries.
type Settings struct {
	Progress progress.Config

	ConfigFile     string
	Name           string
	ProgressOutput string
	ProgressFormat string
	MetricsAddr    string
	LogLevel       int
	EnableJaeger   bool
	JaegerEndpoint string
	SampleRatio    float64
}

// AddFlags registers the shared flags, including the trigger criteria, on cmd.
func (s *Settings) AddFlags(cmd *cobra.Command) {
	s.Progress.AddFlags(cmd)
	cmd.Flags().StringVar(&s.ConfigFile, "config", "", "YAML file with step/seconds/minutes/hours/max; flags override it")
	cmd.Flags().StringVar(&s.Name, "name", "lines", "label used in progress output")
	cmd.Flags().StringVar(&s.ProgressOutput, "progress-output", "stderr", "where to write progress (stderr, stdout, or file path)")
	cmd.Flags().StringVar(&s.ProgressFormat, "progress-format", "text", "progress format (text, json, bar, log)")
	cmd.Flags().StringVar(&s.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	cmd.Flags().IntVar(&s.LogLevel, "verbose", 0, "level for logging output")
	cmd.Flags().BoolVar(&s.EnableJaeger, "enable-jaeger", false, "enable tracer exports to jaeger endpoint")
	cmd.Flags().StringVar(&s.JaegerEndpoint, "jaeger-endpoint", "http://localhost:14268/api/traces", "jaeger endpoint to collect tracing data")
	cmd.Flags().Float64Var(&s.SampleRatio, "trace-sample-ratio", 0, "fraction of runs to trace when --enable-jaeger is set (0 traces every run)")
}

// Validate checks the flags that are not trigger criteria.
func (s *Settings) Validate() error {
	switch s.ProgressFormat {
	case "text", "json", "bar", "log":
	default:
		return fmt.Errorf("unsupported progress format %q: use text, json, bar or log", s.ProgressFormat)
	}
	if s.ProgressOutput == "" {
		return fmt.Errorf("progress output must not be empty")
	}
	return nil
}

// NewLogger returns a logrus backed logr.Logger writing to w.
func NewLogger(w io.Writer, level int) logr.Logger {
	logrusLog := logrus.New()
	logrusLog.SetOutput(w)
	logrusLog.SetFormatter(&logrus.TextFormatter{})
	// Adding 5 here to move logs to info level
	// setting verbose 1 -> V(2) logs show up
	logrusLog.SetLevel(logrus.Level(level + 5))
	return logrusr.New(logrusLog)
}

// Session wires a progress.Logger to the reporters selected by Settings.
// Triggers go through the Session so that several goroutines can share it.
type Session struct {
	name string
	log  logr.Logger

	mu     sync.Mutex
	logger *progress.Logger

	ctx       context.Context
	span      trace.Span
	tracer    *tracing.Provider
	collector collector.Collector
	hub       *progress.Progress
	reporters []progress.Reporter
	output    io.Closer
	metrics   *http.Server
}

// Open builds a Session. The reporter writes to stdout or stderr according
// to ProgressOutput unless it names a file.
func (s *Settings) Open(ctx context.Context, log logr.Logger, stdout, stderr io.Writer) (*Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.ConfigFile != "" {
		if err := s.Progress.LoadFile(s.ConfigFile); err != nil {
			return nil, err
		}
	}

	session := &Session{
		name: s.Name,
		log:  log,
		ctx:  ctx,
	}

	session.collector = collector.New()
	opts := append(s.Progress.ToOptions(), progress.WithLogger(log))
	logger, err := progress.New(progress.ReportNamed(s.Name, session.collector), opts...)
	if err != nil {
		return nil, err
	}
	session.logger = logger

	var writer io.Writer
	switch s.ProgressOutput {
	case "stderr":
		writer = stderr
	case "stdout":
		writer = stdout
	default:
		file, err := os.Create(s.ProgressOutput)
		if err != nil {
			return nil, fmt.Errorf("unable to create progress output file %s: %w", s.ProgressOutput, err)
		}
		writer = file
		session.output = file
	}

	reporters := []progress.Reporter{createProgressReporter(s.ProgressFormat, writer)}

	if s.EnableJaeger {
		tracer, err := tracing.Init(log, tracing.Options{
			EnableJaeger:   s.EnableJaeger,
			JaegerEndpoint: s.JaegerEndpoint,
			SampleRatio:    s.SampleRatio,
		})
		if err != nil {
			session.closeOutput()
			return nil, err
		}
		session.tracer = tracer
		session.ctx, session.span = tracer.Start(ctx, s.Name, attribute.String("progress.name", s.Name))
		reporters = append(reporters, reporter.NewTraceReporter(session.ctx))
	}

	if s.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		reporters = append(reporters, reporter.NewPrometheusReporter(registry, reporter.WithRegistrationLogger(log)))
		session.serveMetrics(s.MetricsAddr, registry)
	}

	hub, err := progress.NewProgress(
		progress.WithContext(session.ctx),
		progress.WithCollectors(session.collector),
		progress.WithReporters(reporters...),
	)
	if err != nil {
		session.shutdown()
		return nil, err
	}
	session.hub = hub
	session.reporters = reporters
	return session, nil
}

func createProgressReporter(format string, w io.Writer) progress.Reporter {
	switch format {
	case "json":
		return reporter.NewJSONReporter(w)
	case "bar":
		return reporter.NewProgressBarReporter(w)
	case "log":
		return reporter.NewLogReporter(NewLogger(w, 0))
	default:
		return reporter.NewTextReporter(w)
	}
}

func (s *Session) serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.metrics = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		s.log.V(2).Info("metrics server listening", "addr", addr)
		if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(err, "metrics server error")
		}
	}()
}

// Trigger counts one unit of work. It is safe for concurrent use.
func (s *Session) Trigger() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger.Trigger()
}

// Count returns the number of triggers so far.
func (s *Session) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger.Count()
}

// Close waits for every queued event to be reported, then reports a final
// summary if anything was counted and releases the output, metrics server
// and tracer.
func (s *Session) Close() {
	s.mu.Lock()
	state, ok := s.logger.Snapshot()
	s.mu.Unlock()

	s.hub.Close()
	if dropped := s.collector.Dropped(); dropped > 0 {
		s.log.V(2).Info("progress events dropped", "count", dropped)
	}

	// The hub's workers are done; the summary goes to the reporters
	// directly so a full collector cannot lose it.
	if ok {
		event := progress.NewEvent(state)
		event.Name = s.name
		event.Final = true
		for _, r := range s.reporters {
			r.Report(event)
		}
	}
	for _, r := range s.reporters {
		if failing, ok := r.(interface{ Err() error }); ok && failing.Err() != nil {
			s.log.Error(failing.Err(), "progress output failed")
		}
	}
	s.shutdown()
}

func (s *Session) shutdown() {
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metrics.Shutdown(ctx); err != nil {
			s.log.Error(err, "error shutting down metrics server")
		}
	}
	if s.span != nil {
		s.span.End()
	}
	if s.tracer != nil {
		s.tracer.Shutdown(context.Background())
	}
	s.closeOutput()
}

func (s *Session) closeOutput() {
	if s.output != nil {
		if err := s.output.Close(); err != nil {
			s.log.Error(err, "error closing progress output")
		}
		s.output = nil
	}
}
