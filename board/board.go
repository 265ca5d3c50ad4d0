// Package board maps Arduino Mega 2560 logical pins onto GPIO ports.
package board

import (
	"tickfw/hal"
	"tickfw/kernel"
)

// Mode is the direction of a pin.
type Mode uint8

const (
	Input Mode = iota
	Output
	InputPullup
)

// fatal stops the device. Replaced in tests.
var fatal = kernel.Fatal

// Pins drives logical pins through a board's ports.
//
// A pin that is not on the board is a wiring error: every method calls
// kernel.Fatal for it and does nothing else.
type Pins struct {
	ports hal.Ports
}

// New returns pin access over ports.
func New(ports hal.Ports) *Pins {
	return &Pins{ports: ports}
}

func (b *Pins) resolve(p Pin) (hal.Port, uint8, bool) {
	id, bit, ok := Lookup(p)
	if !ok {
		fatal("board: invalid pin", p)
		return nil, 0, false
	}
	port := b.ports.Port(id)
	if port == nil {
		fatal("board: port not present", id)
		return nil, 0, false
	}
	return port, bit, true
}

// PinMode sets the direction of p. Input disables the pull-up,
// InputPullup enables it.
func (b *Pins) PinMode(p Pin, mode Mode) {
	port, bit, ok := b.resolve(p)
	if !ok {
		return
	}
	switch mode {
	case Output:
		port.SetOutput(bit)
	case Input:
		port.SetInput(bit)
		port.Low(bit)
	case InputPullup:
		port.SetInput(bit)
		port.High(bit)
	}
}

// DigitalWrite drives an output pin high or low.
func (b *Pins) DigitalWrite(p Pin, high bool) {
	port, bit, ok := b.resolve(p)
	if !ok {
		return
	}
	if high {
		port.High(bit)
	} else {
		port.Low(bit)
	}
}

// DigitalRead returns the level of p.
func (b *Pins) DigitalRead(p Pin) bool {
	port, bit, ok := b.resolve(p)
	if !ok {
		return false
	}
	return port.Read(bit)
}

// DigitalToggle inverts an output pin.
func (b *Pins) DigitalToggle(p Pin) {
	port, bit, ok := b.resolve(p)
	if !ok {
		return
	}
	port.Toggle(bit)
}
