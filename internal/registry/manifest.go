package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/probeharness/internal/check"
	"github.com/hamed0406/probeharness/internal/probe"
)

// Duration accepts Go duration strings ("5s", "300ms") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

// AppsManifest lists the applications of a deployment.
type AppsManifest struct {
	Applications []AppSpec `yaml:"applications"`
}

type AppSpec struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

// LoadFile reads an applications manifest into a new Registry. Relative
// application directories are resolved against the manifest's directory.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read applications manifest %s: %w", path, err)
	}
	var m AppsManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse applications manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	r := New()
	var errs error
	for _, a := range m.Applications {
		dir := a.Dir
		if dir != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		errs = multierr.Append(errs, r.Register(&Application{Name: a.Name, Dir: dir}))
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid applications manifest %s: %w", path, errs)
	}
	return r, nil
}

// CollectionManifest is the YAML form of a probe collection.
type CollectionManifest struct {
	Classes []ClassSpec `yaml:"classes"`
	// Suite, when present, is the ordered list of "Class" or "Class.method"
	// references that make up the collection's suite.
	Suite []string `yaml:"suite,omitempty"`
}

type ClassSpec struct {
	Name     string       `yaml:"name"`
	SetUp    *StepSpec    `yaml:"setup,omitempty"`
	TearDown *StepSpec    `yaml:"teardown,omitempty"`
	Methods  []MethodSpec `yaml:"methods"`
}

type MethodSpec struct {
	Name     string `yaml:"name"`
	StepSpec `yaml:",inline"`
}

// StepSpec is one check against one target.
type StepSpec struct {
	Check   string   `yaml:"check"`
	Target  string   `yaml:"target"`
	Timeout Duration `yaml:"timeout,omitempty"`
	Retries int      `yaml:"retries,omitempty"`
	Backoff Duration `yaml:"backoff,omitempty"`
	Expect  int      `yaml:"expect_status,omitempty"`
}

// CheckFactory builds a checker for a step. check.New is the default.
type CheckFactory func(kind string, o check.Options) (check.Checker, error)

func parseCollection(data []byte) (*CollectionManifest, error) {
	var m CollectionManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		// empty file
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, err
	}
	return &m, nil
}

// merge appends other's classes and suite entries to m.
func (m *CollectionManifest) merge(other *CollectionManifest) {
	m.Classes = append(m.Classes, other.Classes...)
	m.Suite = append(m.Suite, other.Suite...)
}

// Build validates the manifest and turns it into a probe collection for app.
func (m *CollectionManifest) Build(app string, newChecker CheckFactory, loader probe.Loader) (*probe.Collection, error) {
	if newChecker == nil {
		newChecker = check.New
	}
	col := &probe.Collection{App: app}
	seen := make(map[string]bool)
	var errs error

	for _, cs := range m.Classes {
		if cs.Name == "" || strings.Contains(cs.Name, ".") {
			errs = multierr.Append(errs, fmt.Errorf("invalid class name %q", cs.Name))
			continue
		}
		if seen[cs.Name] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate class %q", cs.Name))
			continue
		}
		seen[cs.Name] = true

		cl := &probe.Class{Name: cs.Name}
		var err error
		if cs.SetUp != nil {
			cl.SetUp, err = buildStep(newChecker, *cs.SetUp)
			errs = multierr.Append(errs, wrapf(err, "class %s setup", cs.Name))
		}
		if cs.TearDown != nil {
			cl.TearDown, err = buildStep(newChecker, *cs.TearDown)
			errs = multierr.Append(errs, wrapf(err, "class %s teardown", cs.Name))
		}

		methods := make(map[string]bool)
		for _, ms := range cs.Methods {
			if ms.Name == "" || strings.Contains(ms.Name, ".") {
				errs = multierr.Append(errs, fmt.Errorf("class %s: invalid method name %q", cs.Name, ms.Name))
				continue
			}
			if methods[ms.Name] {
				errs = multierr.Append(errs, fmt.Errorf("class %s: duplicate method %q", cs.Name, ms.Name))
				continue
			}
			methods[ms.Name] = true
			fn, err := buildStep(newChecker, ms.StepSpec)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("method %s.%s: %w", cs.Name, ms.Name, err))
				continue
			}
			cl.Methods = append(cl.Methods, probe.Method{Name: ms.Name, Fn: fn})
		}
		col.Classes = append(col.Classes, cl)
	}

	if len(m.Suite) > 0 {
		refs := append([]string(nil), m.Suite...)
		for _, ref := range refs {
			if _, err := resolveRef(col, ref); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		col.Suite = func() (*probe.Group, error) {
			g := probe.NewGroup(app + ".probes")
			for _, ref := range refs {
				r, err := resolveRef(col, ref)
				if err != nil {
					return nil, err
				}
				switch r.Kind {
				case probe.ClassHandle:
					g.Add(loader.LoadClass(app, r.Class))
				case probe.MethodHandle:
					g.Add(probe.NewCase(app, r.Class, r.Method))
				}
			}
			return g, nil
		}
	}

	if errs != nil {
		return nil, errs
	}
	return col, nil
}

func resolveRef(col *probe.Collection, ref string) (probe.Resolution, error) {
	class, method, _ := strings.Cut(ref, ".")
	if strings.Contains(method, ".") {
		return probe.Resolution{}, fmt.Errorf("suite entry %q should be Class or Class.method", ref)
	}
	r := col.Resolve(class, method)
	if r.Kind == probe.NotFound {
		return r, fmt.Errorf("suite entry %q does not refer to a probe", ref)
	}
	return r, nil
}

func buildStep(newChecker CheckFactory, s StepSpec) (func(*probe.T), error) {
	if s.Target == "" {
		return nil, errors.New("target is required")
	}
	c, err := newChecker(s.Check, check.Options{
		Timeout: time.Duration(s.Timeout),
		Retries: s.Retries,
		Backoff: time.Duration(s.Backoff),
		Expect:  s.Expect,
	})
	if err != nil {
		return nil, err
	}
	target := s.Target
	return func(t *probe.T) {
		res := c.Check(t.Context(), target)
		t.Logf("%s %s: %s (%.0f ms)", res.Name, target, res.Message, res.LatencyMS)
		if !res.Success {
			t.FailNow()
		}
	}, nil
}

func wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
