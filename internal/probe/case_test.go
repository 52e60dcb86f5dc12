package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runOne(t *testing.T, cl *Class, method string) Entry {
	t.Helper()
	m, ok := cl.Method(method)
	require.True(t, ok)
	res := NewResult(nil)
	c := NewCase("app", cl, m)
	res.StartProbe(c)
	c.Run(context.Background(), res)
	res.StopProbe(c)
	require.Len(t, res.Entries, 1)
	return res.Entries[0]
}

func TestCase_Outcomes(t *testing.T) {
	cl := &Class{Name: "Probe", Methods: []Method{
		{Name: "test_pass", Fn: func(t *T) { t.Log("fine") }},
		{Name: "test_fail", Fn: func(t *T) { t.Errorf("got %d", 500) }},
		{Name: "test_fatal", Fn: func(t *T) {
			t.Fatalf("stop here")
			t.Errorf("unreachable")
		}},
		{Name: "test_panic", Fn: func(t *T) { panic("boom") }},
		{Name: "test_abort", Fn: func(t *T) { t.Abort(errors.New("dial refused")) }},
		{Name: "test_skip", Fn: func(t *T) { t.Skip("maintenance window") }},
	}}

	tests := []struct {
		method string
		status Status
		msg    string
	}{
		{"test_pass", StatusPass, ""},
		{"test_fail", StatusFail, "got 500"},
		{"test_fatal", StatusFail, "stop here"},
		{"test_panic", StatusError, "panic: boom"},
		{"test_abort", StatusError, "dial refused"},
		{"test_skip", StatusSkip, "maintenance window"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			e := runOne(t, cl, tt.method)
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, "app.Probe."+tt.method, e.ID)
			if tt.msg == "" {
				assert.Empty(t, e.Message)
			} else {
				assert.Contains(t, e.Message, tt.msg)
			}
			assert.NotContains(t, e.Message, "unreachable")
		})
	}
}

func TestCase_SetUpAndTearDown(t *testing.T) {
	var calls []string
	cl := &Class{
		Name:     "Fixture",
		SetUp:    func(*T) { calls = append(calls, "setup") },
		TearDown: func(*T) { calls = append(calls, "teardown") },
		Methods: []Method{
			{Name: "test_x", Fn: func(t *T) {
				calls = append(calls, "x")
				t.Fail()
			}},
		},
	}
	e := runOne(t, cl, "test_x")
	assert.Equal(t, StatusFail, e.Status)
	assert.Equal(t, []string{"setup", "x", "teardown"}, calls)
}

func TestCase_SetUpPanicSkipsMethodAndTearDown(t *testing.T) {
	ran := false
	cl := &Class{
		Name:     "Broken",
		SetUp:    func(*T) { panic(errors.New("no db")) },
		TearDown: func(*T) { ran = true },
		Methods:  []Method{{Name: "test_x", Fn: func(*T) { ran = true }}},
	}
	e := runOne(t, cl, "test_x")
	assert.Equal(t, StatusError, e.Status)
	assert.Contains(t, e.Message, "no db")
	assert.False(t, ran)
}

func TestPanicError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	tt := newT(context.Background(), "x")
	tt.invoke(func(*T) { panic(cause) })
	assert.True(t, errors.Is(tt.fault, cause))
	assert.True(t, IsPanic(tt.fault))
}

func TestFunc_IsRunnableButNotProbe(t *testing.T) {
	f := &Func{Name: "extra", Fn: func(t *T) { t.Fail() }}
	res := NewResult(nil)
	res.StartProbe(f)
	f.Run(context.Background(), res)
	res.StopProbe(f)

	assert.False(t, IsProbe(f))
	assert.Equal(t, 1, res.ProbesRun)
	assert.Len(t, res.Failures, 1)
	assert.False(t, res.WasSuccessful())
	assert.Equal(t, 1, res.FailureCount())
}
