// Package exitcodes defines the process exit codes of the probe CLI.
//
// * Success (0): no probe failed or errored, including declined and interrupted runs
// * ProbeFailure (1): one or more probes failed or errored
// * RuntimeErr (2): the suite could not be built or run (bad label,
// unresolved probe, broken collection, unreadable manifest)
package exitcodes

const (
	Success      = 0
	ProbeFailure = 1
	RuntimeErr   = 2
)

// ForFailures maps a failure count to an exit code.
func ForFailures(n int) int {
	if n > 0 {
		return ProbeFailure
	}
	return Success
}
