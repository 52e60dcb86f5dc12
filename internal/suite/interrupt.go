package suite

import (
	"os"
	"os/signal"
	"sync"
)

// Interrupter installs an interrupt handler for the duration of a run.
// Notify arranges for handler to be called at most once when an interrupt
// arrives; the returned func removes the handler and must always be called.
type Interrupter interface {
	Notify(handler func()) (restore func())
}

// SignalInterrupter listens for OS signals, os.Interrupt by default. After
// the first signal it stops listening, so a second signal gets whatever
// handling was in place before the run (by default the process exits).
type SignalInterrupter struct {
	Signals []os.Signal
}

func (s SignalInterrupter) Notify(handler func()) func() {
	sigs := s.Signals
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt}
	}
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ch:
			signal.Stop(ch)
			handler()
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
			wg.Wait()
		})
	}
}

// NopInterrupter never interrupts. Runs embedded in a server rely on context
// cancellation instead.
type NopInterrupter struct{}

func (NopInterrupter) Notify(func()) func() { return func() {} }

// ManualInterrupter delivers interrupts on demand.
type ManualInterrupter struct {
	mu       sync.Mutex
	handler  func()
	installs int
	restores int
}

func (m *ManualInterrupter) Notify(handler func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
	m.installs++
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handler = nil
		m.restores++
	}
}

// Interrupt calls the installed handler and uninstalls it, like the first
// OS signal would. It reports whether a handler was installed.
func (m *ManualInterrupter) Interrupt() bool {
	m.mu.Lock()
	h := m.handler
	m.handler = nil
	m.mu.Unlock()
	if h == nil {
		return false
	}
	h()
	return true
}

// Installed reports whether a handler is currently in place.
func (m *ManualInterrupter) Installed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler != nil
}

// Balanced reports whether every install was followed by a restore.
func (m *ManualInterrupter) Balanced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installs == m.restores
}
