package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/probe"
)

// ProbeModule is the conventional name of an application's probe collection.
const ProbeModule = "probes"

// CollectionError reports a probe collection that exists but cannot be loaded.
type CollectionError struct {
	App  string
	Path string
	Err  error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("probe collection %s of application %q failed to load: %v", e.Path, e.App, e.Err)
}

func (e *CollectionError) Unwrap() []error { return []error{probe.ErrCollectionLoad, e.Err} }

// Locator finds an application's probe collection.
type Locator struct {
	NewChecker CheckFactory
	Loader     probe.Loader
	Logger     *zap.Logger
}

func NewLocator(log *zap.Logger) *Locator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{Loader: probe.DefaultLoader, Logger: log}
}

// Locate returns app's probe collection, or nil when it has none. A
// collection that exists but fails to load is a *CollectionError.
func (l *Locator) Locate(app *Application) (*probe.Collection, error) {
	if app.Probes != nil {
		return app.Probes, nil
	}
	if app.Dir == "" {
		return nil, nil
	}

	path, files, err := findCollection(app.Dir)
	if err != nil {
		return nil, l.broken(app, path, err)
	}
	if path == "" {
		l.log().Debug("collection_absent", zap.String("app", app.Name), zap.String("dir", app.Dir))
		return nil, nil
	}

	m := &CollectionManifest{}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, l.broken(app, f, err)
		}
		part, err := parseCollection(data)
		if err != nil {
			return nil, l.broken(app, f, err)
		}
		m.merge(part)
	}

	col, err := m.Build(app.Name, l.NewChecker, l.loader())
	if err != nil {
		return nil, l.broken(app, path, err)
	}
	col.Source = path
	l.log().Debug("collection_located",
		zap.String("app", app.Name),
		zap.String("path", path),
		zap.Int("classes", len(col.Classes)),
	)
	return col, nil
}

func (l *Locator) broken(app *Application, path string, err error) error {
	l.log().Warn("collection_broken", zap.String("app", app.Name), zap.String("path", path), zap.Error(err))
	return &CollectionError{App: app.Name, Path: path, Err: err}
}

func (l *Locator) log() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func (l *Locator) loader() probe.Loader {
	if l.Loader.Prefix == "" {
		return probe.DefaultLoader
	}
	return l.Loader
}

// findCollection looks for probes.yaml, probes.yml, then a probes/ directory.
// An empty path means nothing exists.
func findCollection(dir string) (string, []string, error) {
	for _, name := range []string{ProbeModule + ".yaml", ProbeModule + ".yml"} {
		p := filepath.Join(dir, name)
		fi, err := os.Stat(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return p, nil, err
		case fi.IsDir():
			return p, nil, fmt.Errorf("%s is a directory", name)
		}
		return p, []string{p}, nil
	}

	p := filepath.Join(dir, ProbeModule)
	fi, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return p, nil, err
	}
	if !fi.IsDir() {
		// a stray file named "probes" is not a collection
		return "", nil, nil
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		return p, nil, err
	}
	var files []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(p, e.Name()))
	}
	sort.Strings(files)
	return p, files, nil
}
