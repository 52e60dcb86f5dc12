package scheduler

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/probe"
	"github.com/hamed0406/probeharness/internal/registry"
	"github.com/hamed0406/probeharness/internal/repo/memory"
	"github.com/hamed0406/probeharness/internal/suite"
)

// --- fakes ---

type countingRunner struct {
	mu     sync.Mutex
	n      int
	labels []string
	inner  suite.ProbeRunner
}

func (c *countingRunner) RunProbes(ctx context.Context, labels []string, extra ...probe.Node) (int, error) {
	return c.inner.RunProbes(ctx, labels, extra...)
}

func (c *countingRunner) Execute(ctx context.Context, labels []string, extra ...probe.Node) (*suite.Report, error) {
	c.mu.Lock()
	c.n++
	c.labels = labels
	c.mu.Unlock()
	return c.inner.Execute(ctx, labels, extra...)
}

func (c *countingRunner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// --- test ---

func TestRechecker_RunOnceViaLoop_RecordsRun(t *testing.T) {
	reg := registry.New().MustRegister(&registry.Application{
		Name: "billing",
		Probes: &probe.Collection{Classes: []*probe.Class{{
			Name:    "Web",
			Methods: []probe.Method{{Name: "test_home", Fn: func(*probe.T) {}}},
		}}},
	})
	store := memory.New()
	var out bytes.Buffer
	runner := &countingRunner{inner: suite.NewRunner(suite.Policy{}, reg,
		suite.WithOutput(&out),
		suite.WithInterrupter(suite.NopInterrupter{}),
		suite.WithRecorder(store),
	)}

	rc := NewRechecker(zap.NewNop(), runner, []string{"billing"}, 2*time.Millisecond, time.Second)
	rc.Lock = &sync.Mutex{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rc.Run(ctx)
		close(done)
	}()

	// Wait for the immediate pass to be recorded.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runs, _ := store.RecentRuns(context.Background(), 0); len(runs) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if runner.count() == 0 {
		t.Fatalf("expected at least one run")
	}
	runs, _ := store.RecentRuns(context.Background(), 0)
	if len(runs) == 0 {
		t.Fatalf("expected a recorded run")
	}
	first := runs[len(runs)-1]
	if first.Total != 1 || !first.Passed() || first.Labels[0] != "billing" {
		t.Fatalf("unexpected recorded run: %+v", first)
	}
}

func TestRechecker_DisabledReturnsImmediately(t *testing.T) {
	rc := NewRechecker(zap.NewNop(), &countingRunner{}, nil, 0, 0)
	rc.Run(context.Background())
}
