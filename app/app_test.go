package app

import (
	"bytes"
	"testing"

	"tickfw/board"
	"tickfw/hal"
	"tickfw/internal/buildinfo"
	"tickfw/motor"
)

type led struct {
	levels []bool
}

func newSim(t *testing.T, l *led) (*hal.Sim, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := hal.SimConfig{Manual: true, TxSink: out}
	if l != nil {
		cfg.OnPinChange = func(id hal.PortID, bit uint8, level bool) {
			if id == hal.PortB && bit == 7 {
				l.levels = append(l.levels, level)
			}
		}
	}
	sim := hal.NewSim(cfg)
	t.Cleanup(sim.Close)
	return sim, out
}

func TestBringUp(t *testing.T) {
	sim, out := newSim(t, nil)
	sys := New(sim)

	if n := sys.Scheduler().Len(); n != 4 {
		t.Fatalf("Len() = %d, want 4", n)
	}
	if sys.Motor() != nil {
		t.Fatalf("Motor() != nil without Config.Motor")
	}
	if got := sys.Config(); got.Baud != DefaultBaud || got.LEDPeriod != 1000 {
		t.Fatalf("Config() = %+v, want defaults", got)
	}

	sim.PumpTx()
	if got, want := out.String(), "tickfw "+buildinfo.Short()+"\r\n"; got != want {
		t.Fatalf("boot output = %q, want %q", got, want)
	}
}

func TestBannerTasks(t *testing.T) {
	sim, out := newSim(t, nil)
	sys := New(sim)
	sim.PumpTx()
	out.Reset()

	sim.Step(10)
	sys.Step()
	sim.PumpTx()
	if got, want := out.String(), "10ms_Task!\r\n2ms_Task!\r\n"; got != want {
		t.Fatalf("output at tick 10 = %q, want %q", got, want)
	}

	out.Reset()
	sim.Step(2)
	sys.Step()
	sim.PumpTx()
	if got, want := out.String(), "2ms_Task!\r\n"; got != want {
		t.Fatalf("output at tick 12 = %q, want %q", got, want)
	}
}

func TestQuietEcho(t *testing.T) {
	sim, out := newSim(t, nil)
	sys := NewWithConfig(sim, Config{Quiet: true})
	sim.PumpTx()
	out.Reset()

	if n := sys.Scheduler().Len(); n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}

	sim.Inject([]byte("ok"))
	sys.Step()
	sys.Step()
	sys.Step()
	sim.PumpTx()
	if got := out.String(); got != "ok" {
		t.Fatalf("echo = %q, want %q", got, "ok")
	}
}

func TestLEDBlink(t *testing.T) {
	l := &led{}
	sim, _ := newSim(t, l)
	sys := NewWithConfig(sim, Config{Quiet: true, LEDPeriod: 5})

	for i := 0; i < 20; i++ {
		sim.Step(1)
		sys.Step()
	}
	want := []bool{true, false, true, false}
	if len(l.levels) != len(want) {
		t.Fatalf("LED levels = %v, want %v", l.levels, want)
	}
	for i := range want {
		if l.levels[i] != want[i] {
			t.Fatalf("LED levels = %v, want %v", l.levels, want)
		}
	}
	if sys.Pins().DigitalRead(board.LEDBuiltin) {
		t.Fatalf("DigitalRead(LED) = true after an even number of toggles")
	}
}

func TestMotorBringUp(t *testing.T) {
	sim, _ := newSim(t, nil)
	sys := NewWithConfig(sim, Config{Quiet: true, Motor: true})

	if n := sys.Scheduler().Len(); n != 1 {
		t.Fatalf("Len() = %d, want 1: only echo with the LED pin taken", n)
	}
	m := sys.Motor()
	if m == nil {
		t.Fatalf("Motor() = nil with Config.Motor set")
	}
	if _, ok := sim.Duty(hal.PWMB); !ok {
		t.Fatalf("PWM B not configured")
	}

	m.Forward(motor.B, 40)
	if !sys.Pins().DigitalRead(board.LEDBuiltin) {
		t.Fatalf("direction B (D13) low after Forward")
	}
}
