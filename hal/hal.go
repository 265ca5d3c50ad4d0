package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// IRQState is the interrupt mask state saved by Interrupts.Disable.
type IRQState uintptr

// Interrupts is the global interrupt mask of a single-core MCU.
//
// Disable masks every interrupt source and returns the previous state, which
// must be handed back to Restore. The pair brackets a critical section; it is
// the only synchronization primitive shared by interrupt handlers and the
// foreground loop.
type Interrupts interface {
	Disable() IRQState
	Restore(state IRQState)
	// Enable sets the global interrupt-enable flag.
	Enable()
}

// TickTimer is a periodic hardware interrupt source.
type TickTimer interface {
	// Start programs the timer to call handler hz times per second from
	// interrupt context.
	Start(hz uint32, handler func()) error
}

// Parity selects the UART parity mode.
type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// UARTConfig describes the framing and clock divisor of a UART.
type UARTConfig struct {
	// Baud is the nominal bit rate. Controllers without a raw divisor
	// register configure from it.
	Baud uint32
	// Divisor is the baud rate register value.
	Divisor uint16
	// DoubleSpeed halves the sample clock divider (8 instead of 16).
	DoubleSpeed bool
	DataBits    uint8
	StopBits    uint8
	Parity      Parity
}

// UART is a register-level serial controller handle.
type UART interface {
	// Configure applies cfg and enables both receiver and transmitter. The
	// transmit-ready interrupt is left disabled.
	Configure(cfg UARTConfig) error
	// SetTxInterrupt enables or disables the "transmit register empty"
	// interrupt.
	SetTxInterrupt(enabled bool)
	// WriteData writes one byte to the transmit data register.
	WriteData(b byte)
	// RxComplete reports the "receive complete" status flag.
	RxComplete() bool
	// ReadData reads the receive data register, clearing RxComplete.
	ReadData() byte
	// OnTxReady routes the transmit-ready interrupt to handler.
	OnTxReady(handler func())
}

// PortID names one 8-bit GPIO port.
type PortID uint8

const (
	PortA PortID = iota
	PortB
	PortC
	PortD
	PortE
	PortF
	PortG
	PortH
	PortJ
	PortK
	PortL
	portCount
)

func (p PortID) String() string {
	const names = "ABCDEFGHJKL"
	if p >= portCount {
		return "?"
	}
	return "PORT" + names[p:p+1]
}

// Port is an 8-bit GPIO port addressed by bit number.
type Port interface {
	SetOutput(bit uint8)
	SetInput(bit uint8)
	High(bit uint8)
	Low(bit uint8)
	Toggle(bit uint8)
	Read(bit uint8) bool
}

// Ports provides the GPIO ports of a board. Port returns nil for a port the
// board does not have.
type Ports interface {
	Port(id PortID) Port
}

// PWMChannel names one PWM output of a board.
type PWMChannel uint8

const (
	PWMA PWMChannel = iota
	PWMB
	pwmCount
)

func (c PWMChannel) String() string {
	switch c {
	case PWMA:
		return "A"
	case PWMB:
		return "B"
	}
	return "?"
}

// PWM is a set of 8-bit duty-cycle outputs.
type PWM interface {
	// Configure starts ch with a duty of 0 and drives its pin.
	Configure(ch PWMChannel) error
	// SetDuty sets the high time of ch in 1/255 steps.
	SetDuty(ch PWMChannel, duty uint8)
}

// Board is the set of peripherals the firmware is brought up with.
type Board interface {
	Interrupts() Interrupts
	Timer() TickTimer
	UART() UART
	Ports() Ports
	PWM() PWM
	Logger() Logger
}
