package check

import (
	"context"
	"strings"
)

// MultiChecker runs several checks against the same target and succeeds
// only if all of them do.
type MultiChecker struct {
	Checkers []Checker
}

func NewMultiChecker(checkers ...Checker) *MultiChecker {
	return &MultiChecker{Checkers: checkers}
}

func (m *MultiChecker) Run(ctx context.Context, target string) []Result {
	results := make([]Result, 0, len(m.Checkers))
	for _, c := range m.Checkers {
		results = append(results, c.Check(ctx, target))
	}
	return results
}

func (m *MultiChecker) Check(ctx context.Context, target string) Result {
	out := Result{Name: "Multi", Success: true}
	var msgs []string
	for _, r := range m.Run(ctx, target) {
		if !r.Success {
			out.Success = false
			if out.Err == nil {
				out.Err = r.Err
			}
		}
		out.LatencyMS += r.LatencyMS
		msgs = append(msgs, r.Name+": "+r.Message)
	}
	out.Message = strings.Join(msgs, "; ")
	return out
}
