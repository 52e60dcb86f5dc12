// Package probe holds the building blocks of a probe run: runnable units,
// the groups that order them, the per-unit test context and the result that
// accumulates their outcomes.
//
// A suite is a tree. Leaves implement Runnable; inner nodes are *Group. The
// runner walks the tree depth-first, but suites are normally flattened by
// Reorder before they are run.
package probe

import (
	"context"
	"time"
)

// Node is a member of a suite: either a Runnable leaf or a *Group.
type Node interface {
	ID() string
}

// Runnable is a leaf that can be executed once and reports into a Result.
type Runnable interface {
	Node
	Run(ctx context.Context, res *Result)
}

// Status is the outcome of one executed unit.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
	StatusSkip  Status = "skip"
)

func (s Status) String() string { return string(s) }

// Entry records how a single unit finished.
type Entry struct {
	ID       string        `json:"id"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Group is an ordered, possibly nested collection of nodes.
type Group struct {
	Name    string
	members []Node
}

var _ Node = (*Group)(nil)

func NewGroup(name string, members ...Node) *Group {
	g := &Group{Name: name}
	g.Add(members...)
	return g
}

// ID returns the group name.
func (g *Group) ID() string { return g.Name }

// Add appends members in order. Nil members are ignored.
func (g *Group) Add(members ...Node) {
	for _, m := range members {
		if m == nil {
			continue
		}
		if sub, ok := m.(*Group); ok && sub == nil {
			continue
		}
		g.members = append(g.members, m)
	}
}

// Members returns the direct members of the group in insertion order.
func (g *Group) Members() []Node {
	out := make([]Node, len(g.members))
	copy(out, g.members)
	return out
}

// Len is the number of direct members.
func (g *Group) Len() int { return len(g.members) }

// Count is the number of leaves in the tree rooted at g.
func (g *Group) Count() int {
	n := 0
	for _, m := range g.members {
		if sub, ok := m.(*Group); ok {
			n += sub.Count()
			continue
		}
		n++
	}
	return n
}

// Leaves returns every leaf of the tree in depth-first order.
func (g *Group) Leaves() []Node {
	var out []Node
	for _, m := range g.members {
		if sub, ok := m.(*Group); ok {
			out = append(out, sub.Leaves()...)
			continue
		}
		out = append(out, m)
	}
	return out
}
