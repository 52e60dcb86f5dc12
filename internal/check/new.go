package check

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const defaultTimeout = 10 * time.Second

var ErrUnknownKind = errors.New("unknown check kind")

// Options configure a checker built by New.
type Options struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
	Expect  int // HTTP only
}

type constructor func(Options) Checker

var kinds = map[string]constructor{
	"http": func(o Options) Checker {
		c := NewHTTPChecker(o.Timeout)
		c.Expect = o.Expect
		return c
	},
	"dns":      func(o Options) Checker { return NewDNSChecker(o.Timeout) },
	"tcp":      func(o Options) Checker { return NewTCPChecker(o.Timeout) },
	"postgres": func(o Options) Checker { return NewPostgresChecker(o.Timeout) },
}

// Kinds lists the check kinds New understands.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New builds the checker for kind, wrapped in a RetryChecker when retries
// are requested.
func New(kind string, o Options) (Checker, error) {
	mk, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownKind, kind, Kinds())
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	c := mk(o)
	if o.Retries > 0 {
		c = &RetryChecker{Inner: c, Attempts: o.Retries + 1, Backoff: o.Backoff}
	}
	return c, nil
}
