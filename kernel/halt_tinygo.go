//go:build tinygo

package kernel

import "runtime/interrupt"

func haltForever() {
	interrupt.Disable()
	for {
	}
}
