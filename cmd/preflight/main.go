// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/config"
	"github.com/hamed0406/probeharness/internal/probe"
	"github.com/hamed0406/probeharness/internal/registry"
	"github.com/hamed0406/probeharness/internal/suite"
)

func main() {
	path := config.FromEnv().AppsFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	os.Exit(preflight(path, os.Stdout, os.Stderr))
}

// preflight locates and builds every application's suite without running
// anything. It returns 1 if the manifest or any collection is broken.
func preflight(path string, stdout, stderr io.Writer) int {
	fail := func(msg string) { fmt.Fprintln(stderr, "✖", msg) }
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	apps, err := registry.LoadFile(path)
	if err != nil {
		fail(err.Error())
		return 1
	}
	if apps.Len() == 0 {
		warn(path + " registers no applications")
	}

	b := suite.Builder{
		Apps:    apps,
		Locator: registry.NewLocator(zap.NewNop()),
		Loader:  probe.DefaultLoader,
	}
	broken := 0
	for _, app := range apps.Apps() {
		g, err := b.BuildAppSuite(app)
		if err != nil {
			fail(fmt.Sprintf("%s: %v", app.Name, err))
			broken++
			continue
		}
		if n := g.Count(); n == 0 {
			warn(app.Name + ": no probes")
		} else {
			ok(fmt.Sprintf("%s: %d probes", app.Name, n))
		}
	}
	if broken > 0 {
		fail(fmt.Sprintf("%d of %d applications are broken", broken, apps.Len()))
		return 1
	}
	ok("preflight passed")
	return 0
}
