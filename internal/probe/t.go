package probe

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/multierr"
)

// T is handed to every probe method. Its methods mirror testing.T closely
// enough that probe code reads like test code.
//
// Failures are assertion-style outcomes (Errorf, Fail, FailNow, Fatalf).
// Errors are unexpected faults: panics and Abort. A probe that calls Skip is
// reported as skipped.
type T struct {
	ctx     context.Context
	name    string
	failed  bool
	skipped bool
	fault   error
	logs    []string
}

// sentinels carried by panic to unwind a probe method early
type failNow struct{}
type skipNow struct{}

func newT(ctx context.Context, name string) *T {
	return &T{ctx: ctx, name: name}
}

// Context returns the run context. Probes doing I/O should honour it.
func (t *T) Context() context.Context { return t.ctx }

// Name returns the full ID of the probe being run.
func (t *T) Name() string { return t.name }

func (t *T) Log(args ...any) {
	t.logs = append(t.logs, strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func (t *T) Logf(format string, args ...any) {
	t.logs = append(t.logs, fmt.Sprintf(format, args...))
}

// Fail marks the probe as failed and lets it continue.
func (t *T) Fail() { t.failed = true }

// FailNow marks the probe as failed and stops it.
func (t *T) FailNow() {
	t.failed = true
	panic(failNow{})
}

func (t *T) Error(args ...any) {
	t.Log(args...)
	t.Fail()
}

func (t *T) Errorf(format string, args ...any) {
	t.Logf(format, args...)
	t.Fail()
}

func (t *T) Fatal(args ...any) {
	t.Log(args...)
	t.FailNow()
}

func (t *T) Fatalf(format string, args ...any) {
	t.Logf(format, args...)
	t.FailNow()
}

// Abort records err as an unexpected fault and stops the probe. A nil err is
// a no-op.
func (t *T) Abort(err error) {
	if err == nil {
		return
	}
	t.fault = multierr.Append(t.fault, err)
	panic(failNow{})
}

// Skip stops the probe and reports it as skipped.
func (t *T) Skip(args ...any) {
	if len(args) > 0 {
		t.Log(args...)
	}
	t.skipped = true
	panic(skipNow{})
}

func (t *T) Skipf(format string, args ...any) {
	t.Logf(format, args...)
	t.skipped = true
	panic(skipNow{})
}

func (t *T) Failed() bool { return t.failed || t.fault != nil }

func (t *T) Skipped() bool { return t.skipped }

// invoke runs fn and reports whether it returned normally.
func (t *T) invoke(fn func(*T)) (ok bool) {
	if fn == nil {
		return true
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ok = false
		switch r.(type) {
		case failNow, skipNow:
		default:
			t.fault = multierr.Append(t.fault, &PanicError{Value: r, Stack: debug.Stack()})
		}
	}()
	fn(t)
	return true
}

// outcome folds the collected state into a status and message.
func (t *T) outcome() (Status, string) {
	switch {
	case t.skipped && t.fault == nil && !t.failed:
		return StatusSkip, strings.Join(t.logs, "\n")
	case t.fault != nil:
		msg := t.fault.Error()
		if len(t.logs) > 0 {
			msg = strings.Join(t.logs, "\n") + "\n" + msg
		}
		return StatusError, msg
	case t.failed:
		return StatusFail, strings.Join(t.logs, "\n")
	default:
		return StatusPass, ""
	}
}

// PanicError wraps a value recovered from a panicking probe.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanic reports whether err came from a recovered panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
