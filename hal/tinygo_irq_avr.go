//go:build tinygo && baremetal && avr

package hal

import "device/avr"

func (mcuInterrupts) Enable() {
	avr.Asm("sei")
}
