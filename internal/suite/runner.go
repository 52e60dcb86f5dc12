// Package suite assembles probe suites from labels and runs them.
//
// A Runner is the entry point: it resolves labels against the application
// registry (BuildSuite), executes the flattened suite with an Executor
// (RunSuite) and reduces the result to a failure count (SuiteResult).
package suite

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/domain"
	"github.com/hamed0406/probeharness/internal/metrics"
	"github.com/hamed0406/probeharness/internal/probe"
	"github.com/hamed0406/probeharness/internal/registry"
	"github.com/hamed0406/probeharness/internal/repo"
	"github.com/hamed0406/probeharness/internal/report"
)

// Policy controls how a run behaves. It is fixed when the Runner is built.
type Policy struct {
	Verbosity   int
	Interactive bool
	FailFast    bool
}

// Report is everything known about one finished run.
type Report struct {
	Runner   string
	Labels   []string
	Suite    *probe.Group
	Result   *probe.Result
	Failures int
	Started  time.Time
	Duration time.Duration
}

// Record converts the report into its stored form.
func (r *Report) Record() domain.RunRecord {
	rec := domain.RunRecord{
		Runner:      r.Runner,
		Labels:      append([]string(nil), r.Labels...),
		Total:       r.Result.ProbesRun,
		Failures:    len(r.Result.Failures),
		Errors:      len(r.Result.Errors),
		Skipped:     len(r.Result.Skipped),
		Interrupted: r.Result.Interrupted,
		StartedAt:   r.Started.UTC(),
		DurationMS:  float64(r.Duration.Microseconds()) / 1000,
	}
	for _, e := range r.Result.Entries {
		rec.Outcomes = append(rec.Outcomes, domain.ProbeOutcome{
			ProbeID:    e.ID,
			Status:     e.Status.String(),
			Message:    e.Message,
			DurationMS: float64(e.Duration.Microseconds()) / 1000,
		})
	}
	return rec
}

type Runner struct {
	name        string
	policy      Policy
	builder     Builder
	out         io.Writer
	diag        io.Writer
	log         *zap.Logger
	interrupter Interrupter
	recorder    repo.RunStore
	listeners   []probe.Listener
	table       bool
}

var _ ProbeRunner = (*Runner)(nil)

type Option func(*Runner)

// WithOutput sets where progress and the summary are written. Default stderr.
func WithOutput(w io.Writer) Option { return func(r *Runner) { r.out = w } }

// WithDiag sets where the interrupt diagnostic is written. Default stderr.
func WithDiag(w io.Writer) Option { return func(r *Runner) { r.diag = w } }

func WithLogger(l *zap.Logger) Option { return func(r *Runner) { r.log = l } }

func WithInterrupter(i Interrupter) Option { return func(r *Runner) { r.interrupter = i } }

// WithRecorder stores a RunRecord for every executed run.
func WithRecorder(s repo.RunStore) Option { return func(r *Runner) { r.recorder = s } }

func WithLocator(l CollectionLocator) Option { return func(r *Runner) { r.builder.Locator = l } }

func WithLoader(l probe.Loader) Option { return func(r *Runner) { r.builder.Loader = l } }

// WithListener adds an observer of probe progress.
func WithListener(l probe.Listener) Option {
	return func(r *Runner) { r.listeners = append(r.listeners, l) }
}

// WithTable prints a results table after the summary.
func WithTable(on bool) Option { return func(r *Runner) { r.table = on } }

func NewRunner(p Policy, apps *registry.Registry, opts ...Option) *Runner {
	if p.Verbosity < 0 {
		p.Verbosity = 0
	}
	r := &Runner{
		name:    DefaultRunner,
		policy:  p,
		builder: Builder{Apps: apps, Loader: probe.DefaultLoader},
		out:     os.Stderr,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.builder.Apps == nil {
		r.builder.Apps = registry.New()
	}
	if r.builder.Locator == nil {
		r.builder.Locator = registry.NewLocator(r.log)
	}
	if r.interrupter == nil {
		r.interrupter = SignalInterrupter{}
	}
	return r
}

// Policy returns a copy of the runner's policy.
func (r *Runner) Policy() Policy { return r.policy }

func (r *Runner) Name() string { return r.name }

// Builder exposes the suite builder used by the runner.
func (r *Runner) Builder() *Builder { return &r.builder }

// BuildSuite resolves labels into one flat suite. Bare application names
// include the whole application; dotted labels select a class or a method.
// No labels selects every registered application. extra nodes are appended
// without resolution. The first structural error aborts the build.
func (r *Runner) BuildSuite(labels []string, extra ...probe.Node) (*probe.Group, error) {
	g := probe.NewGroup("probes")
	if len(labels) == 0 {
		for _, app := range r.builder.Apps.Apps() {
			ag, err := r.builder.BuildAppSuite(app)
			if err != nil {
				return nil, err
			}
			g.Add(ag)
		}
	}
	for _, label := range labels {
		if strings.Contains(label, ".") {
			n, err := r.builder.BuildProbe(label)
			if err != nil {
				return nil, err
			}
			g.Add(n)
			continue
		}
		app, err := r.builder.Apps.App(label)
		if err != nil {
			return nil, err
		}
		ag, err := r.builder.BuildAppSuite(app)
		if err != nil {
			return nil, err
		}
		g.Add(ag)
	}
	g.Add(extra...)
	return probe.Reorder(g, probe.IsProbe), nil
}

// RunSuite executes g and writes progress and the summary to the output.
func (r *Runner) RunSuite(ctx context.Context, g *probe.Group) *probe.Result {
	res, _ := r.runSuite(ctx, g)
	return res
}

func (r *Runner) runSuite(ctx context.Context, g *probe.Group) (*probe.Result, time.Duration) {
	stream := report.NewStream(r.out, r.policy.Verbosity)
	ls := multiListener{stream, metrics.Listener{}, logListener{r.log}}
	ls = append(ls, r.listeners...)

	ex := &Executor{
		FailFast:    r.policy.FailFast,
		Interrupter: r.interrupter,
		Diag:        r.diag,
		Logger:      r.log,
	}
	start := time.Now()
	res := ex.Run(ctx, g, ls)
	took := time.Since(start)

	report.Finish(r.out, stream, res, took)
	if r.table {
		report.Table(r.out, res, took)
	}
	metrics.RecordRun(res, took)
	return res, took
}

// SuiteResult is the number of failed plus errored probes.
func (r *Runner) SuiteResult(res *probe.Result) int {
	return len(res.Failures) + len(res.Errors)
}

// Execute builds and runs the suite for labels and returns the full report.
func (r *Runner) Execute(ctx context.Context, labels []string, extra ...probe.Node) (*Report, error) {
	g, err := r.BuildSuite(labels, extra...)
	if err != nil {
		metrics.RecordError(err)
		r.log.Warn("probe_suite_build_failed", zap.Strings("labels", labels), zap.Error(err))
		return nil, err
	}
	r.log.Info("probe_run_started",
		zap.String("runner", r.name),
		zap.Strings("labels", labels),
		zap.Int("probes", g.Count()),
		zap.Bool("failfast", r.policy.FailFast),
	)

	started := time.Now()
	res, took := r.runSuite(ctx, g)
	rep := &Report{
		Runner:   r.name,
		Labels:   labels,
		Suite:    g,
		Result:   res,
		Failures: r.SuiteResult(res),
		Started:  started,
		Duration: took,
	}
	r.log.Info("probe_run_finished",
		zap.Int("probes_run", res.ProbesRun),
		zap.Int("failures", len(res.Failures)),
		zap.Int("errors", len(res.Errors)),
		zap.Bool("interrupted", res.Interrupted),
		zap.Duration("duration", took),
	)

	if r.recorder != nil {
		rec := rep.Record()
		if err := r.recorder.SaveRun(context.WithoutCancel(ctx), &rec); err != nil {
			r.log.Warn("run_record_failed", zap.Error(err))
		}
	}
	return rep, nil
}

// RunProbes builds and runs the suite for labels and returns the number of
// failed plus errored probes.
func (r *Runner) RunProbes(ctx context.Context, labels []string, extra ...probe.Node) (int, error) {
	rep, err := r.Execute(ctx, labels, extra...)
	if err != nil {
		return 0, err
	}
	return rep.Failures, nil
}

type multiListener []probe.Listener

func (m multiListener) ProbeStarted(u probe.Runnable) {
	for _, l := range m {
		l.ProbeStarted(u)
	}
}

func (m multiListener) ProbeFinished(u probe.Runnable, e probe.Entry) {
	for _, l := range m {
		l.ProbeFinished(u, e)
	}
}

type logListener struct{ log *zap.Logger }

func (logListener) ProbeStarted(probe.Runnable) {}

func (l logListener) ProbeFinished(_ probe.Runnable, e probe.Entry) {
	l.log.Debug("probe_finished",
		zap.String("id", e.ID),
		zap.String("status", e.Status.String()),
		zap.Duration("duration", e.Duration),
	)
}
