package board

import (
	"errors"
	"fmt"
	"strconv"

	"tickfw/hal"
)

var errBadPin = errors.New("board: bad pin")

// Pin is an Arduino Mega 2560 logical pin number.
type Pin uint8

// Digital pins.
const (
	D0 Pin = iota
	D1
	D2
	D3
	D4
	D5
	D6
	D7
	D8
	D9
	D10
	D11
	D12
	D13
	D14
	D15
	D16
	D17
	D18
	D19
	D20
	D21
	D22
	D23
	D24
	D25
	D26
	D27
	D28
	D29
	D30
	D31
	D32
	D33
	D34
	D35
	D36
	D37
	D38
	D39
	D40
	D41
	D42
	D43
	D44
	D45
	D46
	D47
	D48
	D49
	D50
	D51
	D52
	D53
)

// Analog pins used as digital I/O.
const (
	A0 Pin = iota + 54
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	A8
	A9
	A10
	A11
	A12
	A13
	A14
	A15
)

// LEDBuiltin is the on-board LED.
const LEDBuiltin = D13

// NumPins is the number of mapped logical pins.
const NumPins = 70

func (p Pin) String() string {
	if p >= A0 && p < NumPins {
		return "A" + itoa(uint8(p-A0))
	}
	return "D" + itoa(uint8(p))
}

func itoa(v uint8) string {
	switch {
	case v < 10:
		return string([]byte{'0' + v})
	case v < 100:
		return string([]byte{'0' + v/10, '0' + v%10})
	}
	return string([]byte{'0' + v/100, '0' + v/10%10, '0' + v%10})
}

type location struct {
	port hal.PortID
	bit  uint8
}

var pinMap = [NumPins]location{
	// D0..D13
	{hal.PortE, 0}, {hal.PortE, 1}, {hal.PortE, 4}, {hal.PortE, 5}, {hal.PortG, 5}, {hal.PortE, 3}, {hal.PortH, 3}, {hal.PortH, 4}, {hal.PortH, 5}, {hal.PortH, 6}, {hal.PortB, 4}, {hal.PortB, 5}, {hal.PortB, 6}, {hal.PortB, 7},
	// D14..D21
	{hal.PortJ, 1}, {hal.PortJ, 0}, {hal.PortH, 1}, {hal.PortH, 0}, {hal.PortD, 3}, {hal.PortD, 2}, {hal.PortD, 1}, {hal.PortD, 0},
	// D22..D29
	{hal.PortA, 0}, {hal.PortA, 1}, {hal.PortA, 2}, {hal.PortA, 3}, {hal.PortA, 4}, {hal.PortA, 5}, {hal.PortA, 6}, {hal.PortA, 7},
	// D30..D37
	{hal.PortC, 7}, {hal.PortC, 6}, {hal.PortC, 5}, {hal.PortC, 4}, {hal.PortC, 3}, {hal.PortC, 2}, {hal.PortC, 1}, {hal.PortC, 0},
	// D38..D41
	{hal.PortD, 7}, {hal.PortG, 2}, {hal.PortG, 1}, {hal.PortG, 0},
	// D42..D46
	{hal.PortL, 7}, {hal.PortL, 6}, {hal.PortL, 5}, {hal.PortL, 4}, {hal.PortL, 3},
	// D47..D49
	{hal.PortL, 2}, {hal.PortL, 1}, {hal.PortL, 0},
	// D50..D53
	{hal.PortB, 3}, {hal.PortB, 2}, {hal.PortB, 1}, {hal.PortB, 0},
	// A0..A7
	{hal.PortF, 0}, {hal.PortF, 1}, {hal.PortF, 2}, {hal.PortF, 3}, {hal.PortF, 4}, {hal.PortF, 5}, {hal.PortF, 6}, {hal.PortF, 7},
	// A8..A15
	{hal.PortK, 0}, {hal.PortK, 1}, {hal.PortK, 2}, {hal.PortK, 3}, {hal.PortK, 4}, {hal.PortK, 5}, {hal.PortK, 6}, {hal.PortK, 7},
}

// Lookup returns the port and bit behind p.
func Lookup(p Pin) (hal.PortID, uint8, bool) {
	if p >= NumPins {
		return 0, 0, false
	}
	loc := pinMap[p]
	return loc.port, loc.bit, true
}

// ParsePin parses "D13", "A0" or a bare pin number.
func ParsePin(s string) (Pin, error) {
	base := uint64(0)
	digits := s
	if s != "" {
		switch s[0] {
		case 'D', 'd':
			digits = s[1:]
		case 'A', 'a':
			base = uint64(A0)
			digits = s[1:]
		}
	}
	v, err := strconv.ParseUint(digits, 10, 8)
	if err != nil || base+v >= NumPins {
		return 0, fmt.Errorf("%w: %q", errBadPin, s)
	}
	return Pin(base + v), nil
}
