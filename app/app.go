// Package app brings up the firmware: scheduler, serial channel, pins and
// the demo tasks.
package app

import (
	"tickfw/board"
	"tickfw/hal"
	"tickfw/kernel"
	"tickfw/motor"
	"tickfw/serial"
)

// Config selects the tasks the firmware registers.
type Config struct {
	// Baud is the serial bit rate. Zero means 115200.
	Baud uint32
	// LEDPeriod is the LED toggle period in ticks. Zero means 1000.
	LEDPeriod uint16
	// SlowPeriod and FastPeriod are the periods of the two serial banner
	// tasks. Zero means 10 and 2.
	SlowPeriod uint16
	FastPeriod uint16
	// Quiet leaves out the serial banner tasks.
	Quiet bool
	// Motor brings up the motor shield. Its direction B pin is the LED pin,
	// so the LED task is left out.
	Motor bool
}

// DefaultBaud is the serial rate used when Config.Baud is zero.
const DefaultBaud = 115200

func (c Config) withDefaults() Config {
	if c.Baud == 0 {
		c.Baud = DefaultBaud
	}
	if c.LEDPeriod == 0 {
		c.LEDPeriod = 1000
	}
	if c.SlowPeriod == 0 {
		c.SlowPeriod = 10
	}
	if c.FastPeriod == 0 {
		c.FastPeriod = 2
	}
	return c
}

// System is the brought-up firmware.
type System struct {
	board  hal.Board
	sched  *kernel.Scheduler
	serial *serial.Port
	pins   *board.Pins
	motor  *motor.Shield
	log    hal.Logger
	cfg    Config
}

// Run brings the firmware up with the default config and runs the
// foreground loop forever.
func Run(b hal.Board) {
	RunWithConfig(b, Config{})
}

// RunWithConfig is Run with an explicit config.
func RunWithConfig(b hal.Board, cfg Config) {
	NewWithConfig(b, cfg).Loop()
}

// New brings the firmware up with the default config and returns without
// entering the foreground loop.
func New(b hal.Board) *System {
	return NewWithConfig(b, Config{})
}

// NewWithConfig brings the firmware up. Hardware configuration errors are
// fatal.
func NewWithConfig(b hal.Board, cfg Config) *System {
	cfg = cfg.withDefaults()
	irq := b.Interrupts()
	s := &System{
		board:  b,
		sched:  kernel.New(irq),
		serial: serial.New(irq),
		pins:   board.New(b.Ports()),
		cfg:    cfg,
	}
	installPanicHandler(b)

	if err := s.sched.Start(b.Timer()); err != nil {
		kernel.Fatal("timer init", err)
		return s
	}
	if err := s.serial.Init(b.UART(), cfg.Baud); err != nil {
		kernel.Fatal("serial init", err)
		return s
	}
	s.log = &serialLogger{port: s.serial}

	if !cfg.Motor {
		s.sched.AddTask(s.blink, cfg.LEDPeriod)
	}
	if !cfg.Quiet {
		s.sched.AddTask(s.slowBanner, cfg.SlowPeriod)
		s.sched.AddTask(s.fastBanner, cfg.FastPeriod)
	}
	s.sched.AddTask(s.serial.Echo, 0)

	if cfg.Motor {
		m, err := motor.New(s.pins, b.PWM())
		if err != nil {
			kernel.Fatal("motor init", err)
			return s
		}
		s.motor = m
	} else {
		s.pins.PinMode(board.LEDBuiltin, board.Output)
	}

	s.bootBanner()
	return s
}

func (s *System) blink()      { s.pins.DigitalToggle(board.LEDBuiltin) }
func (s *System) slowBanner() { s.serial.Send("10ms_Task!\r\n") }
func (s *System) fastBanner() { s.serial.Send("2ms_Task!\r\n") }

// Step runs one dispatch cycle.
func (s *System) Step() { s.sched.Run() }

// Loop runs the foreground loop forever.
func (s *System) Loop() { s.sched.Loop() }

// Scheduler returns the task scheduler.
func (s *System) Scheduler() *kernel.Scheduler { return s.sched }

// Serial returns the serial channel.
func (s *System) Serial() *serial.Port { return s.serial }

// Pins returns the pin driver.
func (s *System) Pins() *board.Pins { return s.pins }

// Motor returns the motor shield, or nil unless Config.Motor is set.
func (s *System) Motor() *motor.Shield { return s.motor }

// Logger returns the serial line logger, or nil before serial bring-up.
func (s *System) Logger() hal.Logger { return s.log }

// Config returns the effective config.
func (s *System) Config() Config { return s.cfg }
