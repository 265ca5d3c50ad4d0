//go:build tinygo && baremetal && !atmega2560

package hal

import (
	"errors"
	"machine"
	"runtime"
	"time"
)

var errTickerRate = errors.New("hal: ticker: zero tick rate")

type tinyGoBoard struct {
	irq    mcuInterrupts
	timer  *tickerTimer
	uart   *machineUART
	ports  *virtualPorts
	logger *uartLogger
}

// New returns a generic TinyGo board: the tick comes from the runtime timer,
// the serial channel is machine.DefaultUART and only the on-board LED is wired,
// as PORTB bit 7 to match the Mega layout.
func New() Board {
	uart := machine.DefaultUART

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &tinyGoBoard{
		timer: &tickerTimer{},
		uart:  &machineUART{uart: uart},
		ports: newVirtualPorts(func(id PortID, bit uint8, level bool) {
			if id == PortB && bit == 7 {
				led.Set(level)
			}
		}),
		logger: &uartLogger{uart: uart},
	}
}

func (b *tinyGoBoard) Interrupts() Interrupts { return b.irq }
func (b *tinyGoBoard) Timer() TickTimer       { return b.timer }
func (b *tinyGoBoard) UART() UART             { return b.uart }
func (b *tinyGoBoard) Ports() Ports           { return b.ports }
func (b *tinyGoBoard) PWM() PWM               { return noPWM{} }
func (b *tinyGoBoard) Logger() Logger         { return b.logger }

// noPWM is the PWM of a board without motor shield wiring.
type noPWM struct{}

func (noPWM) Configure(PWMChannel) error { return ErrNotImplemented }
func (noPWM) SetDuty(PWMChannel, uint8)  {}

type tickerTimer struct{}

func (tickerTimer) Start(hz uint32, handler func()) error {
	if hz == 0 || handler == nil {
		return errTickerRate
	}
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(hz))
		defer ticker.Stop()
		for range ticker.C {
			handler()
		}
	}()
	return nil
}

// machineUART adapts machine.UART to the register-level UART contract. The
// transmit-ready interrupt is emulated by a goroutine that calls the handler
// while it is enabled.
type machineUART struct {
	uart    *machine.UART
	txIE    bool
	handler func()
	started bool
}

func (u *machineUART) Configure(cfg UARTConfig) error {
	if cfg.Baud == 0 {
		return ErrNotImplemented
	}
	u.uart.Configure(machine.UARTConfig{BaudRate: cfg.Baud})
	u.txIE = false
	if !u.started {
		u.started = true
		go u.drain()
	}
	return nil
}

func (u *machineUART) drain() {
	for {
		if u.txIE && u.handler != nil {
			u.handler()
		}
		runtime.Gosched()
	}
}

func (u *machineUART) SetTxInterrupt(enabled bool) { u.txIE = enabled }
func (u *machineUART) WriteData(b byte)            { _ = u.uart.WriteByte(b) }
func (u *machineUART) RxComplete() bool            { return u.uart.Buffered() > 0 }

func (u *machineUART) ReadData() byte {
	b, err := u.uart.ReadByte()
	if err != nil {
		return 0
	}
	return b
}

func (u *machineUART) OnTxReady(handler func()) { u.handler = handler }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}
