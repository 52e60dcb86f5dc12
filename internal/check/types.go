// Package check holds the concrete actions a declarative probe can perform
// against a target: HTTP requests, DNS lookups, TCP dials and database pings.
package check

import "context"

// Result is the outcome of a single check.
//
// StatusCode is the HTTP status when there is one and 0 for transport or
// DNS errors.
type Result struct {
	Name       string  `json:"name"`
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	StatusCode int     `json:"status_code,omitempty"`
	LatencyMS  float64 `json:"latency_ms,omitempty"`
	// Err is set when the check could not be carried out at all.
	Err error `json:"-"`
}

// Checker is implemented by every check kind (HTTP, DNS, TCP, Postgres).
type Checker interface {
	Check(ctx context.Context, target string) Result
}
