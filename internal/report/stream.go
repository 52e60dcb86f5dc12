// Package report renders probe runs for humans: a progress stream while the
// run is going, then failure details, a summary line and optionally a table.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hamed0406/probeharness/internal/probe"
)

const (
	separator1 = "======================================================================"
	separator2 = "----------------------------------------------------------------------"
)

// Stream writes progress as probes finish. Verbosity 0 is silent, 1 prints a
// character per probe and 2 or more prints one line per probe.
type Stream struct {
	w         io.Writer
	verbosity int
	wrote     bool
}

var _ probe.Listener = (*Stream)(nil)

func NewStream(w io.Writer, verbosity int) *Stream {
	return &Stream{w: w, verbosity: verbosity}
}

func (s *Stream) ProbeStarted(r probe.Runnable) {
	if s.verbosity > 1 {
		fmt.Fprintf(s.w, "%s ... ", r.ID())
	}
}

func (s *Stream) ProbeFinished(r probe.Runnable, e probe.Entry) {
	switch {
	case s.verbosity > 1:
		fmt.Fprintln(s.w, longStatus(e))
	case s.verbosity == 1:
		fmt.Fprint(s.w, shortStatus(e.Status))
		s.wrote = true
	}
}

// Dots reports whether the stream left a line of progress characters open.
func (s *Stream) Dots() bool { return s.wrote }

func shortStatus(st probe.Status) string {
	switch st {
	case probe.StatusFail:
		return "F"
	case probe.StatusError:
		return "E"
	case probe.StatusSkip:
		return "s"
	default:
		return "."
	}
}

func longStatus(e probe.Entry) string {
	switch e.Status {
	case probe.StatusFail:
		return "FAIL"
	case probe.StatusError:
		return "ERROR"
	case probe.StatusSkip:
		return fmt.Sprintf("skipped %q", e.Message)
	default:
		return "ok"
	}
}

// PrintErrors writes the details of every errored and failed probe.
func PrintErrors(w io.Writer, res *probe.Result) {
	printList(w, "ERROR", res.Errors)
	printList(w, "FAIL", res.Failures)
}

func printList(w io.Writer, flavour string, entries []probe.Entry) {
	for _, e := range entries {
		fmt.Fprintln(w, separator1)
		fmt.Fprintf(w, "%s: %s\n", flavour, e.ID)
		fmt.Fprintln(w, separator2)
		fmt.Fprintln(w, e.Message)
	}
}

// Summary writes the closing "Ran N probes" block.
func Summary(w io.Writer, res *probe.Result, took time.Duration) {
	fmt.Fprintln(w, separator2)
	noun := "probes"
	if res.ProbesRun == 1 {
		noun = "probe"
	}
	fmt.Fprintf(w, "Ran %d %s in %.3fs\n", res.ProbesRun, noun, took.Seconds())
	if res.Interrupted {
		fmt.Fprintln(w, "Run interrupted")
	}
	fmt.Fprintln(w)

	var infos []string
	if !res.WasSuccessful() {
		if n := len(res.Failures); n > 0 {
			infos = append(infos, fmt.Sprintf("failures=%d", n))
		}
		if n := len(res.Errors); n > 0 {
			infos = append(infos, fmt.Sprintf("errors=%d", n))
		}
	}
	if n := len(res.Skipped); n > 0 {
		infos = append(infos, fmt.Sprintf("skipped=%d", n))
	}

	status := "OK"
	if !res.WasSuccessful() {
		status = "FAILED"
	}
	if len(infos) > 0 {
		fmt.Fprintf(w, "%s (%s)\n", status, strings.Join(infos, ", "))
		return
	}
	fmt.Fprintln(w, status)
}

// Finish closes the progress line and writes errors and the summary.
func Finish(w io.Writer, s *Stream, res *probe.Result, took time.Duration) {
	if s != nil && s.Dots() {
		fmt.Fprintln(w)
	}
	PrintErrors(w, res)
	Summary(w, res, took)
}
