package probe

import "strings"

// DefaultPrefix marks methods the default loader treats as probes.
const DefaultPrefix = "test"

// Discovery says how a collection turns into a suite.
type Discovery int

const (
	// DefaultDiscovery loads every probe method of every class.
	DefaultDiscovery Discovery = iota
	// CustomSuite defers to the collection's own suite factory.
	CustomSuite
)

// SuiteFactory builds the suite a collection wants to expose.
type SuiteFactory func() (*Group, error)

// Collection is the optional set of probes an application ships next to
// its own code.
type Collection struct {
	App     string
	Source  string // where it was loaded from, for diagnostics
	Classes []*Class
	Suite   SuiteFactory
}

// Discovery reports which of the two suite-building variants applies.
func (c *Collection) Discovery() Discovery {
	if c.Suite != nil {
		return CustomSuite
	}
	return DefaultDiscovery
}

// Class finds a class by name.
func (c *Collection) Class(name string) (*Class, bool) {
	if c == nil {
		return nil, false
	}
	for _, cl := range c.Classes {
		if cl.Name == name {
			return cl, true
		}
	}
	return nil, false
}

// ResolutionKind tags the result of Resolve.
type ResolutionKind int

const (
	NotFound ResolutionKind = iota
	ClassHandle
	MethodHandle
)

func (k ResolutionKind) String() string {
	switch k {
	case ClassHandle:
		return "class"
	case MethodHandle:
		return "method"
	default:
		return "not_found"
	}
}

// Resolution is what a class or class+method name resolves to.
type Resolution struct {
	Kind   ResolutionKind
	Class  *Class
	Method Method
}

// Resolve looks up className and, when methodName is set, the method on it.
// A nil collection resolves nothing.
func (c *Collection) Resolve(className, methodName string) Resolution {
	cl, ok := c.Class(className)
	if !ok {
		return Resolution{Kind: NotFound}
	}
	if methodName == "" {
		return Resolution{Kind: ClassHandle, Class: cl}
	}
	m, ok := cl.Method(methodName)
	if !ok {
		return Resolution{Kind: NotFound}
	}
	return Resolution{Kind: MethodHandle, Class: cl, Method: m}
}

// Loader performs default discovery of probe methods.
type Loader struct {
	// Prefix selects probe methods, compared case-insensitively.
	// Empty means DefaultPrefix.
	Prefix string
}

// DefaultLoader is used when no loader is configured.
var DefaultLoader = Loader{Prefix: DefaultPrefix}

// IsProbeMethod reports whether name is picked up by default discovery.
func (l Loader) IsProbeMethod(name string) bool {
	p := l.Prefix
	if p == "" {
		p = DefaultPrefix
	}
	return len(name) >= len(p) && strings.EqualFold(name[:len(p)], p)
}

// LoadClass returns the probe methods of cl, in declaration order, as cases.
func (l Loader) LoadClass(app string, cl *Class) *Group {
	g := NewGroup(app + "." + cl.Name)
	for _, m := range cl.Methods {
		if m.Fn == nil || !l.IsProbeMethod(m.Name) {
			continue
		}
		g.Add(NewCase(app, cl, m))
	}
	return g
}

// LoadClasses loads every class in order into one group.
func (l Loader) LoadClasses(name, app string, classes []*Class) *Group {
	g := NewGroup(name)
	for _, cl := range classes {
		g.Add(l.LoadClass(app, cl))
	}
	return g
}

// LoadCollection builds the suite for a collection, honouring its factory.
func (l Loader) LoadCollection(c *Collection) (*Group, error) {
	switch c.Discovery() {
	case CustomSuite:
		return c.Suite()
	default:
		return l.LoadClasses(c.App+".probes", c.App, c.Classes), nil
	}
}
