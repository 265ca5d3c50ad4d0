package serial

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"tickfw/hal"
)

type fakeUART struct {
	cfg        hal.UARTConfig
	configured int
	configErr  error
	txIE       bool
	written    []byte
	rx         []byte
	handler    func()
}

func (u *fakeUART) Configure(cfg hal.UARTConfig) error {
	if u.configErr != nil {
		return u.configErr
	}
	u.cfg = cfg
	u.configured++
	u.txIE = false
	return nil
}

func (u *fakeUART) SetTxInterrupt(enabled bool) { u.txIE = enabled }
func (u *fakeUART) WriteData(b byte)            { u.written = append(u.written, b) }
func (u *fakeUART) RxComplete() bool            { return len(u.rx) > 0 }
func (u *fakeUART) OnTxReady(handler func())    { u.handler = handler }

func (u *fakeUART) ReadData() byte {
	b := u.rx[0]
	u.rx = u.rx[1:]
	return b
}

// drain delivers transmit-ready interrupts until the port disables them.
func drain(t *testing.T, u *fakeUART) {
	t.Helper()
	for i := 0; u.txIE; i++ {
		if i > 4*RingSize {
			t.Fatalf("drain: interrupt still enabled after %d calls", i)
		}
		u.handler()
	}
}

func newPort(t *testing.T) (*Port, *fakeUART) {
	t.Helper()
	p := New(hal.NewSimInterrupts())
	u := &fakeUART{}
	if err := p.Init(u, 115200); err != nil {
		t.Fatalf("Init() = %v, want nil", err)
	}
	return p, u
}

func TestDivisor(t *testing.T) {
	tests := []struct {
		baud uint32
		want uint16
	}{
		{115200, 16},
		{57600, 33},
		{9600, 207},
		{1_000_000, 1},
	}
	for _, tt := range tests {
		got, err := Divisor(CPUFrequency, tt.baud)
		if err != nil {
			t.Fatalf("Divisor(%d) err = %v", tt.baud, err)
		}
		if got != tt.want {
			t.Fatalf("Divisor(%d) = %d, want %d", tt.baud, got, tt.want)
		}
	}

	for _, baud := range []uint32{0, 300, 4_000_000} {
		if _, err := Divisor(CPUFrequency, baud); !errors.Is(err, errBaudRate) {
			t.Fatalf("Divisor(%d) err = %v, want %v", baud, err, errBaudRate)
		}
	}
}

func TestInitConfiguresUART(t *testing.T) {
	p, u := newPort(t)

	want := hal.UARTConfig{Baud: 115200, Divisor: 16, DoubleSpeed: true, DataBits: 8, StopBits: 1}
	if u.cfg != want {
		t.Fatalf("Configure() cfg = %+v, want %+v", u.cfg, want)
	}
	if u.txIE {
		t.Fatalf("tx interrupt enabled after Init")
	}
	if u.handler == nil {
		t.Fatalf("tx handler not installed")
	}

	other := &fakeUART{}
	if err := p.Init(other, 9600); err != nil {
		t.Fatalf("second Init() = %v, want nil", err)
	}
	if other.configured != 0 || u.configured != 1 {
		t.Fatalf("second Init() reconfigured: first=%d second=%d", u.configured, other.configured)
	}

	p.Send("x")
	drain(t, u)
	if string(u.written) != "x" {
		t.Fatalf("written = %q, want %q", u.written, "x")
	}
}

func TestInitErrors(t *testing.T) {
	p := New(hal.NewSimInterrupts())
	if err := p.Init(nil, 115200); !errors.Is(err, errNoUART) {
		t.Fatalf("Init(nil) = %v, want %v", err, errNoUART)
	}
	if err := p.Init(&fakeUART{}, 0); !errors.Is(err, errBaudRate) {
		t.Fatalf("Init(baud 0) = %v, want %v", err, errBaudRate)
	}

	boom := errors.New("boom")
	if err := p.Init(&fakeUART{configErr: boom}, 115200); !errors.Is(err, boom) {
		t.Fatalf("Init() = %v, want %v", err, boom)
	}

	// A failed Init leaves the port uninitialized.
	if err := p.Init(&fakeUART{}, 115200); err != nil {
		t.Fatalf("Init() after failure = %v, want nil", err)
	}
}

func TestSendBeforeInit(t *testing.T) {
	p := New(hal.NewSimInterrupts())
	p.Send("dropped")
	if n := p.Pending(); n != 0 {
		t.Fatalf("Pending() = %d, want 0", n)
	}
	if b := p.ReadBlocking(); b != 0 {
		t.Fatalf("ReadBlocking() = %d, want 0", b)
	}
	if _, ok := p.ReadNonBlocking(); ok {
		t.Fatalf("ReadNonBlocking() ok = true, want false")
	}
	p.HandleTxReady()
}

func TestSendDrainRoundTrip(t *testing.T) {
	p, u := newPort(t)

	p.Send("10ms_Task!\r\n")
	p.SendBytes([]byte("2ms_Task!\r\n"))
	if !u.txIE {
		t.Fatalf("tx interrupt disabled after Send")
	}
	if n := p.Pending(); n != 23 {
		t.Fatalf("Pending() = %d, want 23", n)
	}

	drain(t, u)

	if got, want := string(u.written), "10ms_Task!\r\n2ms_Task!\r\n"; got != want {
		t.Fatalf("written = %q, want %q", got, want)
	}
	if n := p.Pending(); n != 0 {
		t.Fatalf("Pending() = %d after drain, want 0", n)
	}
}

func TestSendTruncatesWhenFull(t *testing.T) {
	p, u := newPort(t)

	in := bytes.Repeat([]byte("0123456789"), 20)
	p.SendBytes(in)
	if n := p.Pending(); n != RingSize-1 {
		t.Fatalf("Pending() = %d, want %d", n, RingSize-1)
	}
	if n := p.Free(); n != 0 {
		t.Fatalf("Free() = %d, want 0", n)
	}

	p.Send("more")
	drain(t, u)
	if !bytes.Equal(u.written, in[:RingSize-1]) {
		t.Fatalf("written = %q, want %q", u.written, in[:RingSize-1])
	}
}

func TestSendPartialFree(t *testing.T) {
	p, u := newPort(t)

	p.Send(strings.Repeat("a", 100))
	u.handler()
	u.handler()
	p.Send(strings.Repeat("b", 40))

	drain(t, u)
	want := strings.Repeat("a", 100) + strings.Repeat("b", 29)
	if string(u.written) != want {
		t.Fatalf("written = %q, want %q", u.written, want)
	}
}

func TestRead(t *testing.T) {
	p, u := newPort(t)

	if _, ok := p.ReadNonBlocking(); ok {
		t.Fatalf("ReadNonBlocking() ok = true on idle line")
	}

	u.rx = []byte("ab")
	if b := p.ReadBlocking(); b != 'a' {
		t.Fatalf("ReadBlocking() = %q, want 'a'", b)
	}
	b, ok := p.ReadNonBlocking()
	if !ok || b != 'b' {
		t.Fatalf("ReadNonBlocking() = %q, %v, want 'b', true", b, ok)
	}
}

func TestReadBlockingWaitsForByte(t *testing.T) {
	sim := hal.NewSim(hal.SimConfig{Manual: true})
	defer sim.Close()
	p := New(sim.Interrupts())
	if err := p.Init(sim.UART(), 115200); err != nil {
		t.Fatalf("Init() = %v, want nil", err)
	}

	got := make(chan byte, 1)
	go func() { got <- p.ReadBlocking() }()

	select {
	case b := <-got:
		t.Fatalf("ReadBlocking() = %q on idle line, want it to wait", b)
	case <-time.After(20 * time.Millisecond):
	}

	sim.Inject([]byte("z"))
	select {
	case b := <-got:
		if b != 'z' {
			t.Fatalf("ReadBlocking() = %q, want 'z'", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("ReadBlocking() still waiting after a byte arrived")
	}
}

func TestEcho(t *testing.T) {
	p, u := newPort(t)

	p.Echo()
	if u.txIE || len(u.written) != 0 {
		t.Fatalf("Echo() sent on idle line")
	}

	u.rx = []byte("hi")
	p.Echo()
	p.Echo()
	drain(t, u)
	if string(u.written) != "hi" {
		t.Fatalf("written = %q, want %q", u.written, "hi")
	}
}

func TestSimDrain(t *testing.T) {
	var out bytes.Buffer
	sim := hal.NewSim(hal.SimConfig{Manual: true, TxSink: &out})
	defer sim.Close()

	p := New(sim.Interrupts())
	if err := p.Init(sim.UART(), 115200); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	sim.Interrupts().Enable()

	p.Send("hello\r\n")
	if n := sim.PumpTx(); n != 8 {
		t.Fatalf("PumpTx() = %d, want 8", n)
	}
	if out.String() != "hello\r\n" {
		t.Fatalf("sink = %q, want %q", out.String(), "hello\r\n")
	}
	if n := sim.PumpTx(); n != 0 {
		t.Fatalf("PumpTx() after drain = %d, want 0", n)
	}
}
