package probe

// Listener observes a run as it happens. report.Stream is the usual one.
type Listener interface {
	ProbeStarted(r Runnable)
	ProbeFinished(r Runnable, e Entry)
}

// Result accumulates the outcome of one run. It is owned by a single runner
// for the duration of the run and is not safe for concurrent use.
type Result struct {
	Failures  []Entry
	Errors    []Entry
	Skipped   []Entry
	Entries   []Entry
	ProbesRun int
	// Interrupted is set when the run stopped because of an interrupt.
	Interrupted bool

	listener   Listener
	current    Runnable
	shouldStop bool
}

// NewResult returns an empty result that notifies l. l may be nil.
func NewResult(l Listener) *Result {
	return &Result{listener: l}
}

// StartProbe is called by the runner before a unit runs.
func (r *Result) StartProbe(u Runnable) {
	r.ProbesRun++
	r.current = u
	if r.listener != nil {
		r.listener.ProbeStarted(u)
	}
}

// StopProbe is called by the runner after a unit ran.
func (r *Result) StopProbe(u Runnable) {
	if r.current == u {
		r.current = nil
	}
}

// Record stores the outcome of the unit currently running.
func (r *Result) Record(e Entry) {
	r.Entries = append(r.Entries, e)
	switch e.Status {
	case StatusFail:
		r.Failures = append(r.Failures, e)
	case StatusError:
		r.Errors = append(r.Errors, e)
	case StatusSkip:
		r.Skipped = append(r.Skipped, e)
	}
	if r.listener != nil && r.current != nil {
		r.listener.ProbeFinished(r.current, e)
	}
}

// WasSuccessful is true while no failure or error has been recorded.
func (r *Result) WasSuccessful() bool {
	return len(r.Failures) == 0 && len(r.Errors) == 0
}

// Stop asks the runner not to start any further unit.
func (r *Result) Stop() { r.shouldStop = true }

func (r *Result) ShouldStop() bool { return r.shouldStop }

// FailureCount is the number of failed plus errored units.
func (r *Result) FailureCount() int {
	return len(r.Failures) + len(r.Errors)
}
