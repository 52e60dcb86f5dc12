// Package domain holds the records kept about past probe runs.
package domain

import "time"

type RunID int64

// RunRecord summarises one executed probe run.
type RunRecord struct {
	ID          RunID          `json:"id"`
	Runner      string         `json:"runner"`
	Labels      []string       `json:"labels"`
	Total       int            `json:"total"`
	Failures    int            `json:"failures"`
	Errors      int            `json:"errors"`
	Skipped     int            `json:"skipped"`
	Interrupted bool           `json:"interrupted"`
	StartedAt   time.Time      `json:"started_at"`
	DurationMS  float64        `json:"duration_ms"`
	Outcomes    []ProbeOutcome `json:"outcomes,omitempty"`
}

// Passed reports whether the run had neither failures nor errors.
func (r RunRecord) Passed() bool { return r.Failures == 0 && r.Errors == 0 }

// ProbeOutcome is the stored form of one probe's result.
type ProbeOutcome struct {
	ProbeID    string  `json:"probe_id"`
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// FailingProbes lists the IDs of probes that failed or errored.
func (r RunRecord) FailingProbes() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == "fail" || o.Status == "error" {
			out = append(out, o.ProbeID)
		}
	}
	return out
}
