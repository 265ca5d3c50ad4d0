// Package console renders a byte stream on a framebuffer terminal.
//
// It is the screen side of the simulated serial line: whatever the firmware
// transmits is written to a Console and shown by the host window.
package console

import (
	"sync"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	fontHeight = 10
	fontOffset = 6
)

// Console is a terminal emulator over an in-memory framebuffer. It is safe
// for concurrent use.
type Console struct {
	mu      sync.Mutex
	fb      *framebuffer
	d       *fbDisplay
	t       *tinyterm.Terminal
	written uint64
}

// New returns a console of width x height pixels. The height is raised to
// one text row if it is smaller.
func New(width, height int) *Console {
	if width < 8 {
		width = 8
	}
	if height < fontHeight {
		height = fontHeight
	}
	fb := newFramebuffer(width, height)
	c := &Console{fb: fb, d: newFBDisplay(fb)}
	c.reset()
	return c
}

func (c *Console) reset() {
	c.fb.clear(0)
	c.d.SetScroll(0)
	c.t = tinyterm.NewTerminal(c.d)
	c.t.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: fontHeight,
		FontOffset: fontOffset,
	})
}

// Reset clears the screen and the terminal state.
func (c *Console) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Write feeds p to the terminal. It never fails.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written += uint64(len(p))
	return c.t.Write(p)
}

// Written returns the number of bytes written since New.
func (c *Console) Written() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Size returns the screen size in pixels.
func (c *Console) Size() (width, height int) {
	return c.fb.width, c.fb.height
}

// Snapshot copies the screen into dst as RGBA, 4 bytes per pixel, top row
// first. dst must hold width*height*4 bytes; extra pixels are left as is.
func (c *Console) Snapshot(dst []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, h := c.fb.width, c.fb.height
	for y := 0; y < h; y++ {
		src := c.d.row(y)
		for x := 0; x < w; x++ {
			j := (y*w + x) * 4
			if j+3 >= len(dst) {
				return
			}
			r, g, b := rgb888From565(c.fb.at(x, src))
			dst[j+0] = r
			dst[j+1] = g
			dst[j+2] = b
			dst[j+3] = 0xFF
		}
	}
}
