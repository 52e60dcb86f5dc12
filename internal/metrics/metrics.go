// Package metrics exposes probe run counters to prometheus.
package metrics

import (
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hamed0406/probeharness/internal/probe"
)

const MetricsNamespace = "probeharness"

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of structural errors that aborted a run",
	}, []string{
		"error",
	})

	probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "probes_total",
		Help:      "Count of executed probes",
	}, []string{
		"app",
		"result",
	})

	probeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "probe_duration_seconds",
		Help:      "Duration of single probes",
		Buckets:   prometheus.DefBuckets,
	}, []string{
		"app",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of probe runs",
	}, []string{
		"result",
	})

	lastRunFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "last_run_failures",
		Help:      "Failures plus errors of the most recent run",
	})

	lastRunDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "last_run_duration_seconds",
		Help:      "Duration of the most recent run",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

// appOf returns the first label segment of a probe ID.
func appOf(id string) string {
	app, _, _ := strings.Cut(id, ".")
	if app == "" {
		return "unknown"
	}
	return app
}

func RecordError(err error) {
	errorsTotal.WithLabelValues(errToLabel(err)).Inc()
}

func RecordProbe(e probe.Entry) {
	app := appOf(e.ID)
	probesTotal.WithLabelValues(app, e.Status.String()).Inc()
	probeDuration.WithLabelValues(app).Observe(e.Duration.Seconds())
}

func RecordRun(res *probe.Result, took time.Duration) {
	result := "pass"
	switch {
	case res.Interrupted:
		result = "interrupted"
	case !res.WasSuccessful():
		result = "fail"
	}
	runsTotal.WithLabelValues(result).Inc()
	lastRunFailures.Set(float64(res.FailureCount()))
	lastRunDuration.Set(took.Seconds())
}

// Listener records every finished probe.
type Listener struct{}

var _ probe.Listener = Listener{}

func (Listener) ProbeStarted(probe.Runnable) {}

func (Listener) ProbeFinished(_ probe.Runnable, e probe.Entry) { RecordProbe(e) }
