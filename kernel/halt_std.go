//go:build !tinygo

package kernel

import (
	"os"

	"github.com/golang/glog"
)

// haltForever ends the host process: a simulated board has nowhere to spin.
func haltForever() {
	glog.Error("kernel: halted")
	glog.Flush()
	os.Exit(1)
}
