//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"
)

// SimCPUFrequency is the reference clock the simulated UART divides down.
const SimCPUFrequency = 16_000_000

// maxPump bounds PumpTx so a handler that never disables the interrupt
// cannot hang the caller.
const maxPump = 1 << 16

var errUARTFraming = errors.New("hal: uart: unsupported framing")

// simUART emulates a USART with a single-byte receive register, a transmit
// data register and a "transmit register empty" interrupt.
//
// Written bytes go to sink. Received bytes are queued by Inject and surface
// one at a time through RxComplete/ReadData.
type simUART struct {
	irq    *simInterrupts
	manual bool
	paced  bool

	mu         sync.Mutex
	sink       io.Writer
	cfg        UARTConfig
	configured bool
	txIE       bool
	handler    func()
	rx         []byte
	written    uint64
	byteTime   time.Duration

	kick chan struct{}
	stop chan struct{}
}

func newSimUART(irq *simInterrupts, sink io.Writer, manual, paced bool) *simUART {
	if sink == nil {
		sink = io.Discard
	}
	return &simUART{
		irq:    irq,
		manual: manual,
		paced:  paced,
		sink:   sink,
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
}

func (u *simUART) Configure(cfg UARTConfig) error {
	if cfg.DataBits < 5 || cfg.DataBits > 9 || cfg.StopBits < 1 || cfg.StopBits > 2 {
		return fmt.Errorf("%w: %d data, %d stop", errUARTFraming, cfg.DataBits, cfg.StopBits)
	}

	u.mu.Lock()
	first := !u.configured
	u.cfg = cfg
	u.configured = true
	u.txIE = false
	u.byteTime = frameTime(cfg)
	u.mu.Unlock()

	if first && !u.manual {
		go u.drainLoop()
	}
	return nil
}

// frameTime is the wire time of one frame at the configured divisor.
func frameTime(cfg UARTConfig) time.Duration {
	div := uint32(16)
	if cfg.DoubleSpeed {
		div = 8
	}
	baud := SimCPUFrequency / (div * (uint32(cfg.Divisor) + 1))
	if baud == 0 {
		return 0
	}
	bits := 1 + uint32(cfg.DataBits) + uint32(cfg.StopBits)
	if cfg.Parity != ParityNone {
		bits++
	}
	return time.Duration(bits) * time.Second / time.Duration(baud)
}

func (u *simUART) SetTxInterrupt(enabled bool) {
	u.mu.Lock()
	u.txIE = enabled
	u.mu.Unlock()
	if enabled {
		select {
		case u.kick <- struct{}{}:
		default:
		}
	}
}

func (u *simUART) WriteData(b byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.written++
	_, _ = u.sink.Write([]byte{b})
}

func (u *simUART) RxComplete() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.rx) > 0
}

func (u *simUART) ReadData() byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.rx) == 0 {
		return 0
	}
	b := u.rx[0]
	u.rx = u.rx[1:]
	return b
}

func (u *simUART) OnTxReady(handler func()) {
	u.mu.Lock()
	u.handler = handler
	u.mu.Unlock()
}

func (u *simUART) inject(p []byte) {
	u.mu.Lock()
	u.rx = append(u.rx, p...)
	u.mu.Unlock()
}

func (u *simUART) txPending() (func(), bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.handler, u.txIE && u.handler != nil
}

// pump raises the transmit-ready interrupt until the handler disables it.
func (u *simUART) pump() int {
	n := 0
	for n < maxPump {
		h, ok := u.txPending()
		if !ok || !u.irq.raise(h) {
			break
		}
		n++
	}
	return n
}

func (u *simUART) drainLoop() {
	for {
		select {
		case <-u.stop:
			return
		case <-u.kick:
		}
		for {
			select {
			case <-u.stop:
				return
			default:
			}
			h, ok := u.txPending()
			if !ok {
				break
			}
			if !u.irq.raise(h) {
				time.Sleep(time.Millisecond)
				continue
			}
			if u.paced {
				u.mu.Lock()
				d := u.byteTime
				u.mu.Unlock()
				time.Sleep(d)
			} else {
				runtime.Gosched()
			}
		}
	}
}

func (u *simUART) close() {
	select {
	case <-u.stop:
	default:
		close(u.stop)
	}
}
