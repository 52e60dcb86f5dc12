package suite

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/probeharness/internal/probe"
)

// threeUnits returns a suite of three funcs and the log of which ones ran.
// Unit i runs body[i] after logging its start.
func threeUnits(bodies ...func(t *probe.T)) (*probe.Group, *[]string) {
	var ran []string
	g := probe.NewGroup("s")
	for i, name := range []string{"u1", "u2", "u3"} {
		name, body := name, bodies[i]
		g.Add(&probe.Func{Name: name, Fn: func(t *probe.T) {
			ran = append(ran, name+":start")
			body(t)
			ran = append(ran, name+":end")
		}})
	}
	return g, &ran
}

func TestExecutor_FailFast(t *testing.T) {
	for _, failfast := range []bool{true, false} {
		g, ran := threeUnits(pass, func(t *probe.T) { t.Errorf("down") }, pass)
		mi := &ManualInterrupter{}
		ex := &Executor{FailFast: failfast, Interrupter: mi}

		res := ex.Run(context.Background(), g, nil)
		if failfast {
			assert.Equal(t, []string{"u1:start", "u1:end", "u2:start", "u2:end"}, *ran)
			assert.Equal(t, 2, res.ProbesRun)
			assert.True(t, res.ShouldStop())
		} else {
			assert.Equal(t, 3, res.ProbesRun)
			assert.Contains(t, *ran, "u3:end")
		}
		assert.Len(t, res.Failures, 1)
		assert.False(t, res.Interrupted)
		assert.True(t, mi.Balanced())
	}
}

func TestExecutor_FailFastOnError(t *testing.T) {
	g, ran := threeUnits(pass, func(t *probe.T) { panic("nil deref") }, pass)
	res := (&Executor{FailFast: true, Interrupter: &ManualInterrupter{}}).Run(context.Background(), g, nil)
	assert.Len(t, res.Errors, 1)
	assert.NotContains(t, *ran, "u3:start")
}

func TestExecutor_InterruptStopsAfterInflightUnit(t *testing.T) {
	mi := &ManualInterrupter{}
	var diag bytes.Buffer
	var installed, delivered bool
	g, ran := threeUnits(func(*probe.T) {
		installed = mi.Installed()
		delivered = mi.Interrupt()
	}, pass, pass)

	res := (&Executor{Interrupter: mi, Diag: &diag}).Run(context.Background(), g, nil)

	require.True(t, installed)
	require.True(t, delivered)
	assert.Equal(t, []string{"u1:start", "u1:end"}, *ran)
	assert.Equal(t, 1, res.ProbesRun)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, probe.StatusPass, res.Entries[0].Status)
	assert.True(t, res.Interrupted)
	assert.Equal(t, InterruptMessage, diag.String())

	// handler is cooperative once, and always restored
	assert.False(t, mi.Interrupt())
	assert.False(t, mi.Installed())
	assert.True(t, mi.Balanced())
}

func TestExecutor_HandlerRestoredAfterCompletedRun(t *testing.T) {
	mi := &ManualInterrupter{}
	g, _ := threeUnits(pass, pass, pass)
	res := (&Executor{Interrupter: mi}).Run(context.Background(), g, nil)
	assert.Equal(t, 3, res.ProbesRun)
	assert.False(t, mi.Installed())
	assert.True(t, mi.Balanced())
	assert.False(t, mi.Interrupt(), "interrupt after the run has no handler")
}

func TestExecutor_HandlerRestoredWhenUnitPanics(t *testing.T) {
	mi := &ManualInterrupter{}
	g, _ := threeUnits(pass, func(t *probe.T) { panic("x") }, pass)
	res := (&Executor{Interrupter: mi}).Run(context.Background(), g, nil)
	assert.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.ProbesRun)
	assert.True(t, mi.Balanced())
}

func TestExecutor_ContextCancelActsAsInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var inflightErr error
	g, ran := threeUnits(func(t *probe.T) {
		cancel()
		inflightErr = t.Context().Err()
	}, pass, pass)
	res := (&Executor{Interrupter: NopInterrupter{}}).Run(ctx, g, nil)
	assert.Equal(t, []string{"u1:start", "u1:end"}, *ran)
	assert.True(t, res.Interrupted)
	assert.NoError(t, inflightErr, "the unit in flight must not be cancelled")
}

type ctxKey struct{}

func TestExecutor_UnitContextKeepsValuesWithoutDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.WithValue(context.Background(), ctxKey{}, "v"), time.Hour)
	defer cancel()
	var (
		val         any
		hasDeadline bool
	)
	g, _ := threeUnits(func(t *probe.T) {
		val = t.Context().Value(ctxKey{})
		_, hasDeadline = t.Context().Deadline()
	}, pass, pass)
	(&Executor{Interrupter: NopInterrupter{}}).Run(ctx, g, nil)
	assert.Equal(t, "v", val)
	assert.False(t, hasDeadline)
}

type recordingListener struct{ started, finished []string }

func (r *recordingListener) ProbeStarted(u probe.Runnable) { r.started = append(r.started, u.ID()) }

func (r *recordingListener) ProbeFinished(u probe.Runnable, e probe.Entry) {
	r.finished = append(r.finished, e.ID+"="+e.Status.String())
}

func TestExecutor_NotifiesListener(t *testing.T) {
	g, _ := threeUnits(pass, func(t *probe.T) { t.Skip("later") }, fail)
	l := &recordingListener{}
	(&Executor{Interrupter: NopInterrupter{}}).Run(context.Background(), g, l)
	assert.Equal(t, []string{"u1", "u2", "u3"}, l.started)
	assert.Equal(t, []string{"u1=pass", "u2=skip", "u3=fail"}, l.finished)
}

func TestSignalInterrupter_RealSignalStopsAfterInflightUnit(t *testing.T) {
	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)

	// keeps the test binary alive after the executor restores its handler
	guard := make(chan os.Signal, 4)
	signal.Notify(guard, os.Interrupt)
	defer signal.Stop(guard)

	var (
		diag   syncBuffer
		sigErr error
	)
	g, ran := threeUnits(func(*probe.T) {
		if sigErr = self.Signal(os.Interrupt); sigErr != nil {
			return
		}
		// the signal is delivered asynchronously; wait until it is seen
		deadline := time.Now().Add(5 * time.Second)
		for !strings.Contains(diag.String(), InterruptMessage) && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		time.Sleep(20 * time.Millisecond)
	}, pass, pass)

	res := (&Executor{Interrupter: SignalInterrupter{}, Diag: &diag}).Run(context.Background(), g, nil)

	require.NoError(t, sigErr)

	assert.Equal(t, []string{"u1:start", "u1:end"}, *ran)
	assert.Equal(t, 1, res.ProbesRun)
	assert.True(t, res.Interrupted)
	assert.Equal(t, InterruptMessage, diag.String())
}

// syncBuffer is written by the signal goroutine and read by the unit.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSignalInterrupter_RestoreWithoutSignal(t *testing.T) {
	restore := SignalInterrupter{}.Notify(func() { t.Fatal("handler must not run") })
	restore()
	restore()
}
