package probe

import (
	"errors"
	"fmt"
)

var (
	// ErrLabelFormat is returned for labels with the wrong number of segments.
	ErrLabelFormat = errors.New("malformed probe label")
	// ErrNotProbeClass is returned when app.Class names something that has
	// no runnable probe methods.
	ErrNotProbeClass = errors.New("label does not refer to a probe class")
	// ErrNotProbe is returned when a label resolves to nothing runnable.
	ErrNotProbe = errors.New("label does not refer to a probe")
	// ErrCollectionLoad marks a probe collection that exists but is broken.
	ErrCollectionLoad = errors.New("probe collection failed to load")
)

// LabelError ties a resolution failure to the label that caused it.
type LabelError struct {
	Label string
	Err   error
}

func (e *LabelError) Error() string {
	if errors.Is(e.Err, ErrLabelFormat) {
		return fmt.Sprintf("probe label %q should be of the form app.Probe or app.Probe.probe_method", e.Label)
	}
	return fmt.Sprintf("probe label %q: %v", e.Label, e.Err)
}

func (e *LabelError) Unwrap() error { return e.Err }
