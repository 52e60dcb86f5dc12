package probe

import (
	"context"
	"time"
)

// Method is a named probe function on a Class.
type Method struct {
	Name string
	Fn   func(t *T)
}

// Class groups related probe methods that share SetUp and TearDown.
type Class struct {
	Name     string
	SetUp    func(t *T)
	TearDown func(t *T)
	Methods  []Method
}

// Method looks up a method by exact name.
func (c *Class) Method(name string) (Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// Case is a single probe: one method bound to its class and application.
type Case struct {
	App    string
	Class  *Class
	Method Method
}

var _ Runnable = (*Case)(nil)

func NewCase(app string, class *Class, m Method) *Case {
	return &Case{App: app, Class: class, Method: m}
}

// ID is the dotted label that selects exactly this probe.
func (c *Case) ID() string {
	return Label{App: c.App, Class: c.Class.Name, Method: c.Method.Name}.String()
}

// Run executes SetUp, the method and TearDown. TearDown only runs when SetUp
// completed. The outcome is recorded on res.
func (c *Case) Run(ctx context.Context, res *Result) {
	start := time.Now()
	t := newT(ctx, c.ID())
	if t.invoke(c.Class.SetUp) {
		t.invoke(c.Method.Fn)
		t.invoke(c.Class.TearDown)
	}
	status, msg := t.outcome()
	res.Record(Entry{ID: c.ID(), Status: status, Message: msg, Duration: time.Since(start)})
}

// Func adapts a plain function into a Runnable. It is not a Case, so the
// IsProbe matcher does not select it.
type Func struct {
	Name string
	Fn   func(t *T)
}

var _ Runnable = (*Func)(nil)

func (f *Func) ID() string { return f.Name }

func (f *Func) Run(ctx context.Context, res *Result) {
	start := time.Now()
	t := newT(ctx, f.Name)
	t.invoke(f.Fn)
	status, msg := t.outcome()
	res.Record(Entry{ID: f.Name, Status: status, Message: msg, Duration: time.Since(start)})
}
