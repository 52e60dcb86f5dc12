package suite

import (
	"github.com/hamed0406/probeharness/internal/probe"
	"github.com/hamed0406/probeharness/internal/registry"
)

// CollectionLocator finds an application's probe collection. *registry.Locator
// is the usual implementation.
type CollectionLocator interface {
	Locate(app *registry.Application) (*probe.Collection, error)
}

// Builder turns applications and labels into suites.
type Builder struct {
	Apps    *registry.Registry
	Locator CollectionLocator
	Loader  probe.Loader
}

// BuildAppSuite returns the application's own probes followed by its probe
// collection, if it has one.
func (b *Builder) BuildAppSuite(app *registry.Application) (*probe.Group, error) {
	g := probe.NewGroup(app.Name)
	if len(app.Classes) > 0 {
		g.Add(b.Loader.LoadClasses(app.Name+".app", app.Name, app.Classes))
	}

	col, err := b.Locator.Locate(app)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return g, nil
	}
	cg, err := b.Loader.LoadCollection(col)
	if err != nil {
		return nil, &registry.CollectionError{App: app.Name, Path: col.Source, Err: err}
	}
	g.Add(cg)
	return g, nil
}

// BuildProbe resolves an "app.Class" or "app.Class.method" label.
func (b *Builder) BuildProbe(label string) (probe.Node, error) {
	l, err := probe.ParseLabel(label)
	if err != nil {
		return nil, err
	}
	if l.Segments() < 2 {
		return nil, &probe.LabelError{Label: label, Err: probe.ErrLabelFormat}
	}

	app, err := b.Apps.App(l.App)
	if err != nil {
		return nil, err
	}
	col, err := b.Locator.Locate(app)
	if err != nil {
		return nil, err
	}

	r := col.Resolve(l.Class, l.Method)
	switch r.Kind {
	case probe.ClassHandle:
		g := b.Loader.LoadClass(app.Name, r.Class)
		if g.Len() == 0 {
			return nil, &probe.LabelError{Label: label, Err: probe.ErrNotProbeClass}
		}
		return g, nil
	case probe.MethodHandle:
		if r.Method.Fn == nil {
			break
		}
		return probe.NewCase(app.Name, r.Class, r.Method), nil
	}
	return nil, &probe.LabelError{Label: label, Err: probe.ErrNotProbe}
}
