package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPreflight(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "apps.yaml"), `
applications:
  - name: billing
    dir: ./billing
  - name: search
    dir: ./search
`)
	write(t, filepath.Join(dir, "billing", "probes.yaml"), `
classes:
  - name: Web
    methods:
      - name: test_home
        check: http
        target: http://127.0.0.1:1/
`)

	var out, errOut bytes.Buffer
	if code := preflight(filepath.Join(dir, "apps.yaml"), &out, &errOut); code != 0 {
		t.Fatalf("want 0, got %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "✔ billing: 1 probes") {
		t.Fatalf("missing billing line: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "⚠ search: no probes") {
		t.Fatalf("missing search warning: %q", errOut.String())
	}

	// a broken collection fails the preflight without running anything
	write(t, filepath.Join(dir, "search", "probes.yaml"), "classes: [{name: Broken, methods: [{name: test_x}]}]\n")
	out.Reset()
	errOut.Reset()
	if code := preflight(filepath.Join(dir, "apps.yaml"), &out, &errOut); code != 1 {
		t.Fatalf("want 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "✖ search:") || !strings.Contains(errOut.String(), "1 of 2 applications are broken") {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
}

func TestPreflight_MissingManifest(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := preflight(filepath.Join(t.TempDir(), "nope.yaml"), &out, &errOut); code != 1 {
		t.Fatalf("want 1, got %d", code)
	}
}
