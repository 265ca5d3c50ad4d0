//go:build !tinygo

package hal

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	errTimerRate    = errors.New("hal: timer: zero tick rate")
	errTimerHandler = errors.New("hal: timer: nil handler")
	errTimerStarted = errors.New("hal: timer: already started")
)

// simTimer is the compare-match tick source of the simulated board.
//
// In manual mode ticks are only produced by step. Otherwise a goroutine
// fires the handler at the programmed rate, catching up on ticks lost to
// scheduling jitter.
type simTimer struct {
	irq    *simInterrupts
	manual bool

	mu      sync.Mutex
	handler func()
	period  time.Duration
	stop    chan struct{}

	fired atomic.Uint64

	last time.Time
	acc  time.Duration
}

func newSimTimer(irq *simInterrupts, manual bool) *simTimer {
	return &simTimer{irq: irq, manual: manual, stop: make(chan struct{})}
}

func (t *simTimer) Start(hz uint32, handler func()) error {
	if hz == 0 {
		return errTimerRate
	}
	if handler == nil {
		return errTimerHandler
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handler != nil {
		return errTimerStarted
	}
	t.handler = handler
	t.period = time.Second / time.Duration(hz)
	if !t.manual {
		go t.run()
	}
	return nil
}

func (t *simTimer) run() {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case now := <-ticker.C:
			t.advance(now)
		}
	}
}

func (t *simTimer) advance(now time.Time) {
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.step(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	n := int(t.acc / t.period)
	if n == 0 {
		return
	}
	t.acc = t.acc % t.period
	t.step(n)
}

// step fires n ticks back to back.
func (t *simTimer) step(n int) {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	for i := 0; i < n; i++ {
		if t.irq.raise(h) {
			t.fired.Add(1)
		}
	}
}

func (t *simTimer) close() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}
