package kernel

import (
	"sync"
	"sync/atomic"
)

// PanicInfo describes a fatal, unrecoverable firmware error.
type PanicInfo struct {
	Reason string
	Value  any
}

var (
	panicActive atomic.Bool
	panicOnce   sync.Once

	panicHandler atomic.Value // func(PanicInfo)

	// halt stops the device for good. Replaced in tests.
	halt = haltForever
)

// InPanicMode reports whether Fatal has been called.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs the process-wide fatal handler.
//
// The handler is invoked at most once (on the first Fatal). It must not panic
// and must not rely on interrupts: the device halts right after it returns.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

// Fatal reports a programming or board-description error and halts. There is
// no recovery path.
func Fatal(reason string, value any) {
	panicOnce.Do(func() {
		panicActive.Store(true)
		if v := panicHandler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(PanicInfo{Reason: reason, Value: value})
			}
		}
	})
	halt()
}
