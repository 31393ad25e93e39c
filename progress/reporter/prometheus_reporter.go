package reporter

import (
	"errors"
	"math"

	"github.com/go-logr/logr"
	"github.com/kornysietsma/progress-logger/progress"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusReporter exposes the latest event of each named logger as
// Prometheus metrics:
//
//	progress_count{name}              gauge   count at the last firing
//	progress_percent{name}            gauge   count/max*100, only with a max
//	progress_rate{name,window}        gauge   triggers per second, window short|long
//	progress_eta_seconds{name,window} gauge   estimated seconds to max
//	progress_firings_total{name,reason} counter
//
// Undefined rates and ETAs are exported as NaN so a stale value is never
// mistaken for a current one.
//
// Registration errors are logged and never returned. If a metric is
// already registered (two reporters on one registry) the existing one is
// reused.
type PrometheusReporter struct {
	count   *prometheus.GaugeVec
	percent *prometheus.GaugeVec
	rate    *prometheus.GaugeVec
	eta     *prometheus.GaugeVec
	firings *prometheus.CounterVec
	log     logr.Logger
}

// PrometheusReporterOption configures a PrometheusReporter.
type PrometheusReporterOption func(*prometheusOptions)

type prometheusOptions struct {
	namespace string
	log       logr.Logger
}

// WithNamespace prefixes every metric name, e.g. "importer" gives
// importer_progress_count.
func WithNamespace(namespace string) PrometheusReporterOption {
	return func(o *prometheusOptions) {
		o.namespace = namespace
	}
}

// WithRegistrationLogger logs metric registration failures.
func WithRegistrationLogger(log logr.Logger) PrometheusReporterOption {
	return func(o *prometheusOptions) {
		o.log = log
	}
}

// NewPrometheusReporter creates the metrics and registers them on reg.
func NewPrometheusReporter(reg prometheus.Registerer, opts ...PrometheusReporterOption) *PrometheusReporter {
	o := prometheusOptions{log: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &PrometheusReporter{log: o.log}
	r.count = registerGaugeVec(reg, r.log, prometheus.GaugeOpts{
		Namespace: o.namespace,
		Name:      "progress_count",
		Help:      "Number of triggers processed at the last progress firing.",
	}, []string{"name"})
	r.percent = registerGaugeVec(reg, r.log, prometheus.GaugeOpts{
		Namespace: o.namespace,
		Name:      "progress_percent",
		Help:      "Completion percentage relative to the configured max count.",
	}, []string{"name"})
	r.rate = registerGaugeVec(reg, r.log, prometheus.GaugeOpts{
		Namespace: o.namespace,
		Name:      "progress_rate",
		Help:      "Triggers per second since the previous firing (short) or since start (long).",
	}, []string{"name", "window"})
	r.eta = registerGaugeVec(reg, r.log, prometheus.GaugeOpts{
		Namespace: o.namespace,
		Name:      "progress_eta_seconds",
		Help:      "Estimated seconds until the max count is reached.",
	}, []string{"name", "window"})

	firings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: o.namespace,
		Name:      "progress_firings_total",
		Help:      "Total number of progress firings by reason.",
	}, []string{"name", "reason"})
	r.firings = firings
	if existing, ok := register(reg, r.log, firings).(*prometheus.CounterVec); ok {
		r.firings = existing
	}

	return r
}

func registerGaugeVec(reg prometheus.Registerer, log logr.Logger, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(opts, labels)
	if existing, ok := register(reg, log, g).(*prometheus.GaugeVec); ok {
		return existing
	}
	return g
}

// register returns c, or the collector already registered in its place.
func register(reg prometheus.Registerer, log logr.Logger, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		log.Error(err, "failed to register progress metric")
	}
	return c
}

// Report updates the metrics for event.Name.
func (p *PrometheusReporter) Report(event progress.Event) {
	normalize(&event)

	name := event.Name
	p.count.WithLabelValues(name).Set(float64(event.Count))
	if event.Max > 0 {
		p.percent.WithLabelValues(name).Set(event.Percent)
	}
	p.rate.WithLabelValues(name, "short").Set(valueOrNaN(event.ShortRate))
	p.rate.WithLabelValues(name, "long").Set(valueOrNaN(event.LongRate))
	if event.Max > 0 {
		p.eta.WithLabelValues(name, "short").Set(valueOrNaN(event.ShortETA))
		p.eta.WithLabelValues(name, "long").Set(valueOrNaN(event.LongETA))
	}
	if event.Reason != "" {
		p.firings.WithLabelValues(name, event.Reason).Inc()
	}
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
