package serial

import (
	"errors"
	"fmt"

	"tickfw/hal"
)

// CPUFrequency is the reference clock the baud rate divisor is derived from.
const CPUFrequency = 16_000_000

// maxDivisor is the widest value the 12-bit baud rate register holds.
const maxDivisor = 0x0FFF

var (
	errNoUART   = errors.New("serial: no uart")
	errBaudRate = errors.New("serial: unsupported baud rate")
)

// Divisor returns the baud rate register value for baud in double-speed
// mode: cpuHz / (8 * baud) - 1.
func Divisor(cpuHz, baud uint32) (uint16, error) {
	if baud == 0 {
		return 0, fmt.Errorf("%w: %d", errBaudRate, baud)
	}
	q := cpuHz / (8 * baud)
	if q == 0 || q-1 > maxDivisor {
		return 0, fmt.Errorf("%w: %d", errBaudRate, baud)
	}
	return uint16(q - 1), nil
}

// shared is the state the foreground and the transmit interrupt share. It
// is only touched between irq.Disable and irq.Restore.
type shared struct {
	uart hal.UART
	tx   ring
}

// Port is an interrupt-driven serial channel.
//
// Output is queued in a ring and drained one byte per transmit-ready
// interrupt. Input is not buffered: reads poll the receive-complete flag.
type Port struct {
	_      [0]func() // prevent accidental copying.
	irq    hal.Interrupts
	shared shared
}

// New returns an uninitialized port guarded by irq.
func New(irq hal.Interrupts) *Port {
	return &Port{irq: irq}
}

// Init configures uart for baud, 8N1 in double-speed mode, and routes its
// transmit-ready interrupt to the port. Only the first successful Init takes
// effect; later calls return nil and change nothing.
func (p *Port) Init(uart hal.UART, baud uint32) error {
	if uart == nil {
		return errNoUART
	}
	div, err := Divisor(CPUFrequency, baud)
	if err != nil {
		return err
	}

	st := p.irq.Disable()
	done := p.shared.uart != nil
	p.irq.Restore(st)
	if done {
		return nil
	}

	uart.OnTxReady(p.HandleTxReady)
	if err := uart.Configure(hal.UARTConfig{
		Baud:        baud,
		Divisor:     div,
		DoubleSpeed: true,
		DataBits:    8,
		StopBits:    1,
		Parity:      hal.ParityNone,
	}); err != nil {
		return fmt.Errorf("serial: configure: %w", err)
	}

	st = p.irq.Disable()
	p.shared.uart = uart
	p.irq.Restore(st)
	return nil
}

// Send queues the bytes of s for transmission. Bytes that do not fit in the
// ring are dropped without notice. Send does nothing before Init.
func (p *Port) Send(s string) {
	st := p.irq.Disable()
	if p.shared.uart != nil {
		for i := 0; i < len(s); i++ {
			if !p.shared.tx.push(s[i]) {
				break
			}
		}
		p.shared.uart.SetTxInterrupt(true)
	}
	p.irq.Restore(st)
}

// SendBytes is Send for a byte slice.
func (p *Port) SendBytes(b []byte) {
	st := p.irq.Disable()
	if p.shared.uart != nil {
		for _, c := range b {
			if !p.shared.tx.push(c) {
				break
			}
		}
		p.shared.uart.SetTxInterrupt(true)
	}
	p.irq.Restore(st)
}

// HandleTxReady is the transmit-ready interrupt handler. It moves one byte
// from the ring to the data register, or disables the interrupt once the
// ring is empty.
func (p *Port) HandleTxReady() {
	st := p.irq.Disable()
	if u := p.shared.uart; u != nil {
		if b, ok := p.shared.tx.pop(); ok {
			u.WriteData(b)
		} else {
			u.SetTxInterrupt(false)
		}
	}
	p.irq.Restore(st)
}

// ReadBlocking waits for one received byte. It spins with interrupts masked:
// the clock and the transmit drain stop until a byte arrives. It returns 0
// before Init.
func (p *Port) ReadBlocking() byte {
	st := p.irq.Disable()
	defer p.irq.Restore(st)
	u := p.shared.uart
	if u == nil {
		return 0
	}
	for !u.RxComplete() {
	}
	return u.ReadData()
}

// ReadNonBlocking returns a received byte if one is waiting.
func (p *Port) ReadNonBlocking() (byte, bool) {
	st := p.irq.Disable()
	defer p.irq.Restore(st)
	u := p.shared.uart
	if u == nil || !u.RxComplete() {
		return 0, false
	}
	return u.ReadData(), true
}

// Echo sends back a received byte, if there is one.
func (p *Port) Echo() {
	b, ok := p.ReadNonBlocking()
	if !ok {
		return
	}
	buf := [1]byte{b}
	p.SendBytes(buf[:])
}

// Pending returns the number of queued bytes not yet transmitted.
func (p *Port) Pending() int {
	st := p.irq.Disable()
	n := p.shared.tx.len()
	p.irq.Restore(st)
	return n
}

// Free returns how many more bytes Send can queue right now.
func (p *Port) Free() int {
	st := p.irq.Disable()
	n := p.shared.tx.free()
	p.irq.Restore(st)
	return n
}
