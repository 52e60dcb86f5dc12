package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/suite"
)

// Rechecker runs the probe suite for Labels on a fixed interval. Runs are
// recorded by the runner itself (see suite.WithRecorder).
type Rechecker struct {
	Logger   *zap.Logger
	Runner   suite.ProbeRunner
	Labels   []string
	Interval time.Duration
	// Timeout bounds a run at unit boundaries: no unit starts after it
	// expires, and the one in flight finishes.
	Timeout time.Duration
	// Lock, when set, is held for the duration of each run so periodic runs
	// never overlap runs started elsewhere.
	Lock sync.Locker
}

func NewRechecker(
	logger *zap.Logger,
	runner suite.ProbeRunner,
	labels []string,
	interval time.Duration,
	timeout time.Duration,
) *Rechecker {
	if interval < 0 {
		interval = 0
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Rechecker{
		Logger:   logger,
		Runner:   runner,
		Labels:   labels,
		Interval: interval,
		Timeout:  timeout,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	if r.Lock != nil {
		r.Lock.Lock()
		defer r.Lock.Unlock()
	}
	cctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	rep, err := r.Runner.Execute(cctx, r.Labels)
	if err != nil {
		r.Logger.Warn("rechecker_run_error", zap.Strings("labels", r.Labels), zap.Error(err))
		return
	}
	r.Logger.Debug("rechecker_ran",
		zap.Int("probes_run", rep.Result.ProbesRun),
		zap.Int("failures", rep.Failures),
		zap.Duration("duration", rep.Duration),
	)
}
