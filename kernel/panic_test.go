package kernel

import (
	"sync"
	"testing"
)

// resetPanic clears the process-wide panic state between tests.
func resetPanic() {
	panicOnce = sync.Once{}
	panicActive.Store(false)
}

func TestFatalRunsHandlerOnce(t *testing.T) {
	defer resetPanic()
	halts := 0
	oldHalt := halt
	halt = func() { halts++ }
	defer func() { halt = oldHalt }()

	var got []PanicInfo
	SetPanicHandler(func(info PanicInfo) { got = append(got, info) })
	defer SetPanicHandler(nil)

	if InPanicMode() {
		t.Fatalf("InPanicMode() = true before Fatal")
	}

	Fatal("pin", 99)
	Fatal("again", nil)

	if len(got) != 1 {
		t.Fatalf("handler calls = %d, want 1", len(got))
	}
	if got[0].Reason != "pin" || got[0].Value != 99 {
		t.Fatalf("PanicInfo = %+v, want {pin 99}", got[0])
	}
	if halts != 2 {
		t.Fatalf("halts = %d, want 2", halts)
	}
	if !InPanicMode() {
		t.Fatalf("InPanicMode() = false after Fatal")
	}
}
