package suite

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/probe"
)

// InterruptMessage is written to the diagnostic stream on the first interrupt.
const InterruptMessage = " <Probe run halted by interrupt> "

// Executor runs a suite sequentially, one unit at a time, in suite order.
type Executor struct {
	FailFast    bool
	Interrupter Interrupter
	// Diag receives the interrupt diagnostic. Defaults to stderr.
	Diag   io.Writer
	Logger *zap.Logger
}

// Run executes every leaf of g and returns the accumulated result. An
// interrupt, a cancelled ctx, or a failure under FailFast stops the run once
// the unit in flight has finished. ctx is only consulted between units.
func (e *Executor) Run(ctx context.Context, g *probe.Group, l probe.Listener) *probe.Result {
	res := probe.NewResult(l)
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var interrupted atomic.Bool
	intr := e.Interrupter
	if intr == nil {
		intr = SignalInterrupter{}
	}
	restore := intr.Notify(func() {
		fmt.Fprint(e.diag(), InterruptMessage)
		interrupted.Store(true)
	})
	defer restore()

	unitCtx := context.WithoutCancel(ctx)
	for _, n := range g.Leaves() {
		if res.ShouldStop() {
			break
		}
		if ctx.Err() != nil {
			interrupted.Store(true)
			res.Stop()
			break
		}
		u, ok := n.(probe.Runnable)
		if !ok {
			log.Warn("probe_not_runnable", zap.String("id", n.ID()))
			continue
		}

		// the unit keeps ctx values but never sees its cancellation
		res.StartProbe(u)
		u.Run(unitCtx, res)
		res.StopProbe(u)

		if ctx.Err() != nil {
			interrupted.Store(true)
		}
		if (e.FailFast && !res.WasSuccessful()) || interrupted.Load() {
			res.Stop()
		}
	}

	res.Interrupted = interrupted.Load()
	if res.Interrupted {
		log.Info("probe_run_interrupted", zap.Int("probes_run", res.ProbesRun))
	}
	return res
}

func (e *Executor) diag() io.Writer {
	if e.Diag == nil {
		return os.Stderr
	}
	return e.Diag
}
