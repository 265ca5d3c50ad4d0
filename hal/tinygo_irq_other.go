//go:build tinygo && baremetal && !avr

package hal

// Enable is a no-op: the runtime leaves interrupts enabled after reset on
// these targets.
func (mcuInterrupts) Enable() {}
