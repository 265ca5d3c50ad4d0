package app

import (
	"fmt"

	"tickfw/board"
	"tickfw/hal"
	"tickfw/kernel"
)

// installPanicHandler reports fatal errors on the board logger, which does not
// depend on the interrupt-driven serial path, and leaves the LED lit.
func installPanicHandler(b hal.Board) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		if l := b.Logger(); l != nil {
			l.WriteLineString(fmt.Sprintf("tickfw panic: %s: %v", info.Reason, info.Value))
		}
		port, bit, ok := board.Lookup(board.LEDBuiltin)
		if !ok {
			return
		}
		if p := b.Ports().Port(port); p != nil {
			p.SetOutput(bit)
			p.High(bit)
		}
	})
}
