//go:build !tinygo

package hal

// Screen is a pixel source the host window shows.
type Screen interface {
	Size() (width, height int)
	// Snapshot copies the screen as RGBA, top row first.
	Snapshot(dst []byte)
}

// WindowConfig configures RunWindow.
type WindowConfig struct {
	Title string
	// Scale is the window magnification. Zero means 2.
	Scale int
	// Screen is drawn above the status bar.
	Screen Screen
	// LED reports the on-board LED level for the status bar.
	LED func() bool
	// Status is extra text for the status bar.
	Status func() string
	// OnInput receives bytes typed into the window.
	OnInput func(p []byte)
}

func (c WindowConfig) scale() int {
	if c.Scale <= 0 {
		return 2
	}
	return c.Scale
}
