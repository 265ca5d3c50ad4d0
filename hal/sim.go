//go:build !tinygo

package hal

import (
	"io"

	"github.com/golang/glog"
)

// SimConfig configures the simulated board.
type SimConfig struct {
	// Manual disables the wall-clock interrupt sources. Ticks then only
	// happen through Step and the UART only drains through PumpTx.
	Manual bool
	// Paced holds each transmitted byte for its wire time at the
	// configured baud rate.
	Paced bool
	// TxSink receives every byte written to the UART data register.
	TxSink io.Writer
	// OnPinChange observes output level changes on any port.
	OnPinChange PinChange
}

// Sim is a host simulation of the reference board: a single-core MCU with a
// tick timer, one UART and GPIO ports A..L.
type Sim struct {
	irq   *simInterrupts
	timer *simTimer
	uart  *simUART
	ports *virtualPorts
	pwm   *simPWM
	log   glogLogger
}

// NewSim returns a simulated board.
func NewSim(cfg SimConfig) *Sim {
	irq := &simInterrupts{}
	log := glogLogger{}
	onChange := cfg.OnPinChange
	if onChange == nil {
		onChange = func(id PortID, bit uint8, level bool) {
			if glog.V(1) {
				glog.Infof("gpio: %s.%d %s", id, bit, levelName(level))
			}
		}
	}
	return &Sim{
		irq:   irq,
		timer: newSimTimer(irq, cfg.Manual),
		uart:  newSimUART(irq, cfg.TxSink, cfg.Manual, cfg.Paced),
		ports: newVirtualPorts(onChange),
		pwm:   &simPWM{},
		log:   log,
	}
}

func (s *Sim) Interrupts() Interrupts { return s.irq }
func (s *Sim) Timer() TickTimer       { return s.timer }
func (s *Sim) UART() UART             { return s.uart }
func (s *Sim) Ports() Ports           { return s.ports }
func (s *Sim) PWM() PWM               { return s.pwm }
func (s *Sim) Logger() Logger         { return s.log }

// Step fires n tick interrupts synchronously.
func (s *Sim) Step(n int) {
	s.timer.step(n)
}

// Ticks returns the number of tick interrupts delivered so far.
func (s *Sim) Ticks() uint64 {
	return s.timer.fired.Load()
}

// PumpTx delivers transmit-ready interrupts until the handler disables them
// and returns how many were delivered.
func (s *Sim) PumpTx() int {
	return s.uart.pump()
}

// Inject queues bytes on the UART receive line.
func (s *Sim) Inject(p []byte) {
	s.uart.inject(p)
}

// Written returns the number of bytes the UART has transmitted.
func (s *Sim) Written() uint64 {
	s.uart.mu.Lock()
	defer s.uart.mu.Unlock()
	return s.uart.written
}

// Drive sets the external level of an input pin.
func (s *Sim) Drive(id PortID, bit uint8, level bool) {
	if id >= portCount {
		return
	}
	s.ports.ports[id].Drive(bit, level)
}

// Release stops driving an input pin.
func (s *Sim) Release(id PortID, bit uint8) {
	if id >= portCount {
		return
	}
	s.ports.ports[id].Release(bit)
}

// Duty returns the last duty written to ch and whether ch was configured.
func (s *Sim) Duty(ch PWMChannel) (uint8, bool) {
	return s.pwm.duty(ch)
}

// Close stops the simulated interrupt sources.
func (s *Sim) Close() {
	s.timer.close()
	s.uart.close()
}

type glogLogger struct{}

func (glogLogger) WriteLineString(s string) {
	glog.Info(s)
}

func (glogLogger) WriteLineBytes(b []byte) {
	glog.Info(string(b))
}

func levelName(level bool) string {
	if level {
		return "HIGH"
	}
	return "LOW"
}
