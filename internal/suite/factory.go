package suite

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hamed0406/probeharness/internal/probe"
	"github.com/hamed0406/probeharness/internal/registry"
)

// DefaultRunner is the name the built-in Runner is registered under.
const DefaultRunner = "default"

var ErrUnknownRunner = errors.New("unknown probe runner")

// ProbeRunner is what the CLI, the web view and the scheduler drive.
type ProbeRunner interface {
	RunProbes(ctx context.Context, labels []string, extra ...probe.Node) (int, error)
	Execute(ctx context.Context, labels []string, extra ...probe.Node) (*Report, error)
}

// Factory builds a named runner implementation.
type Factory func(p Policy, apps *registry.Registry, opts ...Option) ProbeRunner

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		DefaultRunner: func(p Policy, apps *registry.Registry, opts ...Option) ProbeRunner {
			return NewRunner(p, apps, opts...)
		},
	}
)

// RegisterRunner makes a runner implementation selectable by name.
func RegisterRunner(name string, f Factory) error {
	if name == "" || f == nil {
		return errors.New("runner name and factory are required")
	}
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, ok := factories[name]; ok {
		return fmt.Errorf("runner %q already registered", name)
	}
	factories[name] = f
	return nil
}

// NewNamedRunner builds the runner registered as name. Empty means
// DefaultRunner.
func NewNamedRunner(name string, p Policy, apps *registry.Registry, opts ...Option) (ProbeRunner, error) {
	if name == "" {
		name = DefaultRunner
	}
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownRunner, name, Runners())
	}
	if name != DefaultRunner {
		opts = append(opts, func(r *Runner) { r.name = name })
	}
	return f(p, apps, opts...), nil
}

// Runners lists registered runner names.
func Runners() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	out := make([]string, 0, len(factories))
	for n := range factories {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
