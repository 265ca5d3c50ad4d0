//go:build tinygo && atmega2560

package hal

import (
	"device/avr"
	"errors"
	"runtime/interrupt"
	"runtime/volatile"
)

// CPUFrequency is the ATmega2560 system clock on the Arduino Mega.
const CPUFrequency = 16_000_000

// Register bits from the ATmega2560 datasheet.
const (
	tccr1aCOM1A1 = 1 << 7
	tccr1aWGM11  = 1 << 1
	tccr1bWGM13  = 1 << 4
	tccr1bWGM12  = 1 << 3
	tccr1bCS11   = 1 << 1
	tccr1bCS10   = 1 << 0
	timsk1TOIE1  = 1 << 0

	tccr3aCOM3C1 = 1 << 3
	tccr3aWGM31  = 1 << 1
	tccr3bWGM33  = 1 << 4
	tccr3bWGM32  = 1 << 3
	tccr3bCS31   = 1 << 1

	ucsr0aRXC0 = 1 << 7
	ucsr0aU2X0 = 1 << 1

	ucsr0bRXEN0  = 1 << 4
	ucsr0bTXEN0  = 1 << 3
	ucsr0bUDRIE0 = 1 << 5

	ucsr0cUSBS0  = 1 << 3
	ucsr0cUPM01  = 1 << 5
	ucsr0cUPM00  = 1 << 4
	ucsr0cUCSZ01 = 1 << 2
	ucsr0cUCSZ00 = 1 << 1
)

const (
	timer1Prescale = 64

	// Motor shield PWM pins: OC3C on PE5 (D3), OC1A on PB5 (D11).
	oc3cBit = 5
	oc1aBit = 5
)

var (
	errTimer1Rate = errors.New("hal: timer1: rate not reachable with prescaler 64")
	errUSART0Bits = errors.New("hal: usart0: only 8 data bits supported")
	errPWMChannel = errors.New("hal: pwm: no such channel")
	errPWMTimer1  = errors.New("hal: pwm B: timer1 not running")

	timer1Handler func()
	usart0Handler func()

	// timer1Top is ICR1 once the tick runs; PWM B scales its duty to it.
	timer1Top uint16
)

func handleTimer1Overflow(interrupt.Interrupt) {
	if h := timer1Handler; h != nil {
		h()
	}
}

func handleUSART0DataEmpty(interrupt.Interrupt) {
	if h := usart0Handler; h != nil {
		h()
	}
}

type megaBoard struct {
	irq   mcuInterrupts
	timer *timer1
	uart  *usart0
	ports *megaPorts
	pwm   *megaPWM
	log   *uartLogger
}

// New returns the Arduino Mega 2560 board: Timer1 as tick source, USART0 as
// the serial channel, ports A..L and the motor shield PWM outputs.
func New() Board {
	u := &usart0{}
	return &megaBoard{
		timer: &timer1{},
		uart:  u,
		ports: newMegaPorts(),
		pwm:   &megaPWM{},
		log:   &uartLogger{uart: u},
	}
}

func (b *megaBoard) Interrupts() Interrupts { return b.irq }
func (b *megaBoard) Timer() TickTimer       { return b.timer }
func (b *megaBoard) UART() UART             { return b.uart }
func (b *megaBoard) Ports() Ports           { return b.ports }
func (b *megaBoard) PWM() PWM               { return b.pwm }
func (b *megaBoard) Logger() Logger         { return b.log }

// timer1 runs Timer1 in fast PWM mode 14 (TOP = ICR1) and ticks on
// overflow, which leaves OC1A free as a PWM output at the tick rate. The
// runtime keeps Timer0 for itself.
type timer1 struct{}

func (timer1) Start(hz uint32, handler func()) error {
	if hz == 0 || handler == nil {
		return errTimer1Rate
	}
	top := CPUFrequency/timer1Prescale/hz - 1
	if top == 0 || top > 0xFFFF {
		return errTimer1Rate
	}

	timer1Handler = handler
	interrupt.New(avr.IRQ_TIMER1_OVF, handleTimer1Overflow)

	avr.TCCR1B.Set(0)
	avr.TCCR1A.Set(avr.TCCR1A.Get()&tccr1aCOM1A1 | tccr1aWGM11)
	avr.TCNT1H.Set(0)
	avr.TCNT1L.Set(0)
	// 16 MHz / 64 / (249+1) = 1 kHz. High byte first.
	avr.ICR1H.Set(uint8(top >> 8))
	avr.ICR1L.Set(uint8(top))
	timer1Top = uint16(top)
	avr.TCCR1B.Set(tccr1bWGM13 | tccr1bWGM12 | tccr1bCS11 | tccr1bCS10)
	avr.TIMSK1.SetBits(timsk1TOIE1)
	return nil
}

// megaPWM drives the motor shield PWM pins. Channel A is Timer3 in fast PWM
// mode 14 with TOP 255 and prescaler 8 (about 7.8 kHz). Channel B shares
// Timer1 with the tick, so its frequency is the tick rate and its duty is
// scaled to ICR1.
type megaPWM struct{}

func (megaPWM) Configure(ch PWMChannel) error {
	switch ch {
	case PWMA:
		avr.DDRE.SetBits(1 << oc3cBit)
		avr.TCCR3A.Set(tccr3aCOM3C1 | tccr3aWGM31)
		avr.ICR3H.Set(0)
		avr.ICR3L.Set(0xFF)
		avr.OCR3CH.Set(0)
		avr.OCR3CL.Set(0)
		avr.TCCR3B.Set(tccr3bWGM33 | tccr3bWGM32 | tccr3bCS31)
		return nil
	case PWMB:
		if timer1Top == 0 {
			return errPWMTimer1
		}
		avr.DDRB.SetBits(1 << oc1aBit)
		avr.OCR1AH.Set(0)
		avr.OCR1AL.Set(0)
		avr.TCCR1A.SetBits(tccr1aCOM1A1)
		return nil
	}
	return errPWMChannel
}

func (megaPWM) SetDuty(ch PWMChannel, duty uint8) {
	switch ch {
	case PWMA:
		avr.OCR3CH.Set(0)
		avr.OCR3CL.Set(duty)
	case PWMB:
		ocr := uint16(uint32(duty) * uint32(timer1Top) / 0xFF)
		avr.OCR1AH.Set(uint8(ocr >> 8))
		avr.OCR1AL.Set(uint8(ocr))
	}
}

// usart0 drives USART0 at the register level.
type usart0 struct{}

func (usart0) Configure(cfg UARTConfig) error {
	if cfg.DataBits != 8 {
		return errUSART0Bits
	}

	if cfg.DoubleSpeed {
		avr.UCSR0A.SetBits(ucsr0aU2X0)
	} else {
		avr.UCSR0A.ClearBits(ucsr0aU2X0)
	}
	avr.UBRR0H.Set(uint8(cfg.Divisor >> 8))
	avr.UBRR0L.Set(uint8(cfg.Divisor))

	c := uint8(ucsr0cUCSZ01 | ucsr0cUCSZ00)
	if cfg.StopBits == 2 {
		c |= ucsr0cUSBS0
	}
	switch cfg.Parity {
	case ParityEven:
		c |= ucsr0cUPM01
	case ParityOdd:
		c |= ucsr0cUPM01 | ucsr0cUPM00
	}
	avr.UCSR0C.Set(c)

	// Receive complete interrupt stays off: reception is polled.
	avr.UCSR0B.Set(ucsr0bRXEN0 | ucsr0bTXEN0)
	return nil
}

func (usart0) SetTxInterrupt(enabled bool) {
	if enabled {
		avr.UCSR0B.SetBits(ucsr0bUDRIE0)
	} else {
		avr.UCSR0B.ClearBits(ucsr0bUDRIE0)
	}
}

func (usart0) WriteData(b byte) { avr.UDR0.Set(b) }
func (usart0) RxComplete() bool { return avr.UCSR0A.HasBits(ucsr0aRXC0) }
func (usart0) ReadData() byte   { return avr.UDR0.Get() }

func (usart0) OnTxReady(handler func()) {
	usart0Handler = handler
	interrupt.New(avr.IRQ_USART0_UDRE, handleUSART0DataEmpty)
}

// regPort is one PINx/DDRx/PORTx register triple.
type regPort struct {
	pin  *volatile.Register8
	ddr  *volatile.Register8
	port *volatile.Register8
}

func (p *regPort) SetOutput(bit uint8) { p.ddr.SetBits(1 << bit) }
func (p *regPort) SetInput(bit uint8)  { p.ddr.ClearBits(1 << bit) }
func (p *regPort) High(bit uint8)      { p.port.SetBits(1 << bit) }
func (p *regPort) Low(bit uint8)       { p.port.ClearBits(1 << bit) }
func (p *regPort) Toggle(bit uint8)    { p.port.Set(p.port.Get() ^ (1 << bit)) }
func (p *regPort) Read(bit uint8) bool { return p.pin.HasBits(1 << bit) }

type megaPorts struct {
	ports [portCount]regPort
}

func newMegaPorts() *megaPorts {
	return &megaPorts{ports: [portCount]regPort{
		PortA: {avr.PINA, avr.DDRA, avr.PORTA},
		PortB: {avr.PINB, avr.DDRB, avr.PORTB},
		PortC: {avr.PINC, avr.DDRC, avr.PORTC},
		PortD: {avr.PIND, avr.DDRD, avr.PORTD},
		PortE: {avr.PINE, avr.DDRE, avr.PORTE},
		PortF: {avr.PINF, avr.DDRF, avr.PORTF},
		PortG: {avr.PING, avr.DDRG, avr.PORTG},
		PortH: {avr.PINH, avr.DDRH, avr.PORTH},
		PortJ: {avr.PINJ, avr.DDRJ, avr.PORTJ},
		PortK: {avr.PINK, avr.DDRK, avr.PORTK},
		PortL: {avr.PINL, avr.DDRL, avr.PORTL},
	}}
}

func (m *megaPorts) Port(id PortID) Port {
	if id >= portCount {
		return nil
	}
	return &m.ports[id]
}

// uartLogger writes log lines straight to USART0 by polling, bypassing the
// transmit ring. It is only meant for bring-up and the panic path.
type uartLogger struct {
	uart *usart0
}

const ucsr0aUDRE0 = 1 << 5

func (l *uartLogger) writeByte(b byte) {
	for !avr.UCSR0A.HasBits(ucsr0aUDRE0) {
	}
	avr.UDR0.Set(b)
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.writeByte(s[i])
	}
	l.writeByte('\r')
	l.writeByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.writeByte(b[i])
	}
	l.writeByte('\r')
	l.writeByte('\n')
}
