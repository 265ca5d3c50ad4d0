//go:build tinygo && baremetal

package hal

import "runtime/interrupt"

type mcuInterrupts struct{}

func (mcuInterrupts) Disable() IRQState {
	return IRQState(interrupt.Disable())
}

func (mcuInterrupts) Restore(state IRQState) {
	interrupt.Restore(interrupt.State(state))
}
