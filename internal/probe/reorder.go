package probe

import "fmt"

// Matcher is a type discriminator used to partition suites.
type Matcher func(Node) bool

// IsProbe matches class-bound probes.
func IsProbe(n Node) bool {
	_, ok := n.(*Case)
	return ok
}

// Partition walks g depth-first and appends each leaf to the bin of the
// first matching class. Leaves matching no class go to the last bin.
// bins must hold exactly len(classes)+1 groups.
func Partition(g *Group, classes []Matcher, bins []*Group) {
	if len(bins) != len(classes)+1 {
		panic(fmt.Sprintf("probe: partition needs %d bins, got %d", len(classes)+1, len(bins)))
	}
	for _, m := range g.members {
		if sub, ok := m.(*Group); ok {
			Partition(sub, classes, bins)
			continue
		}
		placed := false
		for i, match := range classes {
			if match(m) {
				bins[i].Add(m)
				placed = true
				break
			}
		}
		if !placed {
			bins[len(bins)-1].Add(m)
		}
	}
}

// Reorder returns a flat group holding the leaves of g sorted by class:
// leaves of classes[0] first, then classes[1], and so on, unmatched last.
// Relative order inside each class is preserved.
func Reorder(g *Group, classes ...Matcher) *Group {
	bins := make([]*Group, len(classes)+1)
	for i := range bins {
		bins[i] = NewGroup(g.Name)
	}
	Partition(g, classes, bins)
	for _, b := range bins[1:] {
		bins[0].Add(b.members...)
	}
	return bins[0]
}
