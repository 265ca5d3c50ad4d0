//go:build !tinygo

// Package monitor is a line-oriented console that steps the simulated board
// deterministically: ticks, dispatch cycles and serial input happen only
// when a command asks for them.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/google/shlex"

	"tickfw/app"
	"tickfw/board"
	"tickfw/hal"
	"tickfw/motor"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errUsage          = errors.New("usage")
	errNoMotor        = errors.New("motor shield not enabled")
)

// maxCount bounds repeat counts so a typo cannot stall the console.
const maxCount = 1 << 20

// Monitor drives a manual-mode simulation of the firmware.
type Monitor struct {
	sim *hal.Sim
	sys *app.System
	out io.Writer
}

// New returns a monitor over sim, which must have been created with
// SimConfig.Manual, and the firmware brought up on it.
func New(sim *hal.Sim, sys *app.System, out io.Writer) *Monitor {
	return &Monitor{sim: sim, sys: sys, out: out}
}

type command struct {
	usage string
	help  string
	run   func(m *Monitor, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"tick":  {"tick [n]", "fire n tick interrupts without dispatching", (*Monitor).tick},
		"run":   {"run [n]", "run n dispatch cycles, then drain the UART", (*Monitor).run},
		"step":  {"step [n]", "n times: one tick and one dispatch cycle; then drain", (*Monitor).step},
		"rx":    {"rx <text>", "queue text on the UART receive line", (*Monitor).rx},
		"drain": {"drain", "deliver transmit interrupts until the ring is empty", (*Monitor).drain},
		"time":  {"time", "print the tick counter", (*Monitor).time},
		"tasks": {"tasks", "list registered tasks", (*Monitor).tasks},
		"pins":  {"pins [pin...]", "print pin levels (default: LED)", (*Monitor).pins},
		"drive": {"drive <pin> high|low|release", "set the external level of an input pin", (*Monitor).drive},
		"motor": {"motor [a|b fwd|back|stop|duty [n]]", "drive the motor shield, or print duties", (*Monitor).motor},
		"help":  {"help", "list commands", (*Monitor).help},
	}
}

// Run reads commands from r until "quit", end of input or ctx is done.
func (m *Monitor) Run(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	m.prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := m.Exec(sc.Text())
		if err != nil {
			fmt.Fprintf(m.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
		m.prompt()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("monitor: read: %w", err)
	}
	return nil
}

func (m *Monitor) prompt() {
	fmt.Fprint(m.out, "> ")
}

// Exec runs one command line. It reports quit for "quit" and "exit".
func (m *Monitor) Exec(line string) (quit bool, err error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return false, nil
	}
	if glog.V(1) {
		glog.Infof("monitor: %q", args)
	}

	name := strings.ToLower(args[0])
	if name == "quit" || name == "exit" {
		return true, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", errUnknownCommand, args[0])
	}
	return false, cmd.run(m, args[1:])
}

func count(args []string, usage string) (int, error) {
	switch len(args) {
	case 0:
		return 1, nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n > maxCount {
			return 0, fmt.Errorf("%w: %s", errUsage, usage)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %s", errUsage, usage)
}

func (m *Monitor) tick(args []string) error {
	n, err := count(args, commands["tick"].usage)
	if err != nil {
		return err
	}
	m.sim.Step(n)
	return m.time(nil)
}

func (m *Monitor) run(args []string) error {
	n, err := count(args, commands["run"].usage)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		m.sys.Step()
		m.sim.PumpTx()
	}
	return nil
}

func (m *Monitor) step(args []string) error {
	n, err := count(args, commands["step"].usage)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		m.sim.Step(1)
		m.sys.Step()
		// The ring holds 127 bytes; drain every cycle like the wire would.
		m.sim.PumpTx()
	}
	return nil
}

func (m *Monitor) rx(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s", errUsage, commands["rx"].usage)
	}
	m.sim.Inject([]byte(strings.Join(args, " ")))
	return nil
}

func (m *Monitor) drain(args []string) error {
	n := m.sim.PumpTx()
	port := m.sys.Serial()
	fmt.Fprintf(m.out, "\ndrained %d interrupts, pending %d, free %d\n", n, port.Pending(), port.Free())
	return nil
}

func (m *Monitor) time(args []string) error {
	fmt.Fprintf(m.out, "now=%d ticks=%d\n", m.sys.Scheduler().Now(), m.sim.Ticks())
	return nil
}

func (m *Monitor) tasks(args []string) error {
	s := m.sys.Scheduler()
	for i := 0; i < s.Len(); i++ {
		info, ok := s.Task(i)
		if !ok {
			break
		}
		kind := "periodic"
		if info.Period == 0 {
			kind = "background"
		}
		fmt.Fprintf(m.out, "%d %s period=%d next=%d ready=%v\n", i, kind, info.Period, info.NextRun, info.Ready)
	}
	return nil
}

func (m *Monitor) pins(args []string) error {
	if len(args) == 0 {
		args = []string{board.LEDBuiltin.String()}
	}
	pins := make([]board.Pin, 0, len(args))
	for _, a := range args {
		p, err := board.ParsePin(a)
		if err != nil {
			return err
		}
		pins = append(pins, p)
	}
	for _, p := range pins {
		port, bit, _ := board.Lookup(p)
		level := "LOW"
		if m.sys.Pins().DigitalRead(p) {
			level = "HIGH"
		}
		fmt.Fprintf(m.out, "%s %s.%d %s\n", p, port, bit, level)
	}
	return nil
}

func (m *Monitor) drive(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: %s", errUsage, commands["drive"].usage)
	}
	p, err := board.ParsePin(args[0])
	if err != nil {
		return err
	}
	port, bit, _ := board.Lookup(p)
	switch strings.ToLower(args[1]) {
	case "high", "1":
		m.sim.Drive(port, bit, true)
	case "low", "0":
		m.sim.Drive(port, bit, false)
	case "release":
		m.sim.Release(port, bit)
	default:
		return fmt.Errorf("%w: %s", errUsage, commands["drive"].usage)
	}
	return nil
}

func (m *Monitor) motor(args []string) error {
	shield := m.sys.Motor()
	if shield == nil {
		return errNoMotor
	}
	if len(args) == 0 {
		for _, c := range []motor.Channel{motor.A, motor.B} {
			fmt.Fprintf(m.out, "motor %s duty=%d\n", c, shield.Duty(c))
		}
		return nil
	}

	usage := fmt.Errorf("%w: %s", errUsage, commands["motor"].usage)
	if len(args) < 2 || len(args) > 3 {
		return usage
	}
	c, err := motor.ParseChannel(args[0])
	if err != nil {
		return err
	}
	speed := uint8(motor.MaxDuty)
	if len(args) == 3 {
		n, err := strconv.ParseUint(args[2], 10, 8)
		if err != nil {
			return usage
		}
		speed = uint8(n)
	}
	switch strings.ToLower(args[1]) {
	case "fwd", "forward":
		shield.Forward(c, speed)
	case "back", "backward":
		shield.Backward(c, speed)
	case "stop":
		shield.Stop(c)
	case "duty":
		if len(args) != 3 {
			return usage
		}
		shield.SetDuty(c, speed)
	default:
		return usage
	}
	return nil
}

func (m *Monitor) help(args []string) error {
	for _, name := range []string{"tick", "run", "step", "rx", "drain", "time", "tasks", "pins", "drive", "motor", "help"} {
		c := commands[name]
		fmt.Fprintf(m.out, "  %-36s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(m.out, "  %-36s %s\n", "quit", "leave the monitor")
	return nil
}
