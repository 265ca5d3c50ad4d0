//go:build !tinygo

package hal

import (
	"sync"
	"sync/atomic"
)

// simInterrupts emulates the global interrupt mask with a mutex.
//
// Simulated interrupt sources are goroutines. They call their handler without
// holding the mask, and the handler opens its own critical section exactly as
// the firmware code does on hardware. Critical sections do not nest.
type simInterrupts struct {
	mu      sync.Mutex
	enabled atomic.Bool
}

// NewSimInterrupts returns a host interrupt mask, for tests and the simulator.
// Interrupt delivery starts after Enable.
func NewSimInterrupts() Interrupts {
	return &simInterrupts{}
}

func (i *simInterrupts) Disable() IRQState {
	i.mu.Lock()
	if i.enabled.Load() {
		return 1
	}
	return 0
}

func (i *simInterrupts) Restore(state IRQState) {
	_ = state
	i.mu.Unlock()
}

func (i *simInterrupts) Enable() {
	i.enabled.Store(true)
}

// raise delivers one interrupt to handler. It reports false when interrupts
// are globally disabled and nothing was delivered.
func (i *simInterrupts) raise(handler func()) bool {
	if handler == nil || !i.enabled.Load() {
		return false
	}
	handler()
	return true
}
