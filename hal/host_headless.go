//go:build !tinygo

package hal

import (
	"context"
	"runtime"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Ticks stops the runner once the simulated timer has fired this many
	// times. Zero runs until ctx is done.
	Ticks uint64
}

// RunHeadless calls step as the foreground loop of sim until ctx is done or
// the tick budget is used up.
func RunHeadless(ctx context.Context, sim *Sim, step func(), cfg HeadlessConfig) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cfg.Ticks > 0 && sim.Ticks() >= cfg.Ticks {
			return nil
		}
		step()
		runtime.Gosched()
	}
}
