//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/golang/glog"

	"tickfw/app"
	"tickfw/board"
	"tickfw/console"
	"tickfw/hal"
	"tickfw/internal/bridge"
	"tickfw/internal/buildinfo"
	"tickfw/internal/monitor"
)

const formFeed = 0x0c

type options struct {
	headless  bool
	monitor   bool
	ticks     uint64
	paced     bool
	app       app.Config
	mqttURL   string
	mqttTopic string
}

func main() {
	// glog defaults to files; the simulator logs to the terminal.
	_ = flag.Set("logtostderr", "true")

	var opts options
	var baud uint
	flag.BoolVar(&opts.headless, "headless", false, "Run without a window; the serial line goes to stdout.")
	flag.BoolVar(&opts.monitor, "monitor", false, "Step the board by hand from a command console (implies -headless).")
	flag.Uint64Var(&opts.ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&opts.paced, "paced", true, "Hold each transmitted byte for its wire time at the configured baud rate.")
	flag.UintVar(&baud, "baud", app.DefaultBaud, "Serial baud rate.")
	flag.BoolVar(&opts.app.Quiet, "quiet", false, "Do not register the periodic serial banner tasks.")
	flag.BoolVar(&opts.app.Motor, "motor", false, "Bring up the motor shield (takes over the LED pin).")
	flag.StringVar(&opts.mqttURL, "mqtt", "", "Mirror the serial line to an MQTT broker, e.g. mqtt://localhost:1883.")
	flag.StringVar(&opts.mqttTopic, "mqtt-topic", bridge.DefaultTopic, "MQTT topic prefix for <prefix>/tx and <prefix>/rx.")
	flag.Parse()
	defer glog.Flush()

	opts.app.Baud = uint32(baud)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
		glog.Error(err)
		glog.Flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	glog.Infof("tickfw %s", buildinfo.String())

	tx := &fanout{}
	var con *console.Console
	if opts.headless || opts.monitor {
		tx.add(os.Stdout)
	} else {
		con = console.New(320, 240)
		tx.add(con)
	}

	sim := hal.NewSim(hal.SimConfig{
		Manual: opts.monitor,
		Paced:  opts.paced && !opts.monitor,
		TxSink: tx,
	})
	defer sim.Close()

	if opts.mqttURL != "" {
		b, err := bridge.Dial(ctx, opts.mqttURL, opts.mqttTopic, sim)
		if err != nil {
			return err
		}
		defer b.Close()
		tx.add(b)
		glog.Infof("serial bridged to %s (%s, %s)", opts.mqttURL, b.TxTopic(), b.RxTopic())
	}

	sys := app.NewWithConfig(sim, opts.app)

	switch {
	case opts.monitor:
		return monitor.New(sim, sys, os.Stdout).Run(ctx, os.Stdin)
	case opts.headless:
		go func() {
			if err := sim.FeedRx(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
				glog.Warningf("stdin: %v", err)
			}
		}()
		return hal.RunHeadless(ctx, sim, sys.Step, hal.HeadlessConfig{Ticks: opts.ticks})
	}
	return runWindow(ctx, sim, sys, con, opts)
}

func runWindow(ctx context.Context, sim *hal.Sim, sys *app.System, con *console.Console, opts options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		if err := hal.RunHeadless(ctx, sim, sys.Step, hal.HeadlessConfig{Ticks: opts.ticks}); err != nil && !errors.Is(err, context.Canceled) {
			glog.Error(err)
		}
	}()

	err := hal.RunWindow(ctx, hal.WindowConfig{
		Title:  "tickfw (" + buildinfo.Short() + ")",
		Screen: con,
		LED:    func() bool { return sys.Pins().DigitalRead(board.LEDBuiltin) },
		Status: func() string {
			return fmt.Sprintf("t=%05d tx=%d", sys.Scheduler().Now(), con.Written())
		},
		OnInput: func(p []byte) {
			// Ctrl+L clears the screen instead of reaching the firmware.
			if len(p) == 1 && p[0] == formFeed {
				con.Reset()
				return
			}
			sim.Inject(p)
		},
	})
	cancel()
	wg.Wait()
	return err
}

// fanout copies the transmit stream to every registered writer. Write errors
// are logged and otherwise ignored: a slow or broken sink must not stall the
// simulated line.
type fanout struct {
	mu sync.Mutex
	ws []io.Writer
}

func (f *fanout) add(w io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ws = append(f.ws, w)
}

func (f *fanout) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.ws {
		if _, err := w.Write(p); err != nil {
			glog.V(1).Infof("tx sink: %v", err)
		}
	}
	return len(p), nil
}
