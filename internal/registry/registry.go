// Package registry keeps the applications that can expose probes and knows
// how to find each application's probe collection.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hamed0406/probeharness/internal/probe"
)

var (
	ErrUnknownApp   = errors.New("no such application")
	ErrDuplicateApp = errors.New("application already registered")
)

// Application is a named unit of the host system.
type Application struct {
	Name string
	// Dir is searched for a probe collection manifest when Probes is nil.
	Dir string
	// Classes are probes defined by the application itself.
	Classes []*probe.Class
	// Probes is a collection supplied in code. It takes precedence over Dir.
	Probes *probe.Collection
}

// Registry holds applications in registration order.
type Registry struct {
	mu    sync.RWMutex
	apps  map[string]*Application
	order []string
}

func New() *Registry {
	return &Registry{apps: make(map[string]*Application)}
}

// Register adds app. Names must be unique and must not contain dots.
func (r *Registry) Register(app *Application) error {
	if app == nil || app.Name == "" {
		return errors.New("application name is required")
	}
	if l, err := probe.ParseLabel(app.Name); err != nil || l.Segments() != 1 {
		return fmt.Errorf("invalid application name %q: must be a single label segment", app.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[app.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateApp, app.Name)
	}
	if app.Probes != nil && app.Probes.App == "" {
		app.Probes.App = app.Name
	}
	r.apps[app.Name] = app
	r.order = append(r.order, app.Name)
	return nil
}

// MustRegister is Register for static setup code.
func (r *Registry) MustRegister(apps ...*Application) *Registry {
	for _, a := range apps {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
	return r
}

// App returns the application called name.
func (r *Registry) App(name string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, name)
	}
	return app, nil
}

// Apps returns every application in registration order.
func (r *Registry) Apps() []*Application {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Application, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.apps[n])
	}
	return out
}

// Len is the number of registered applications.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
