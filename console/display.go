package console

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// fbDisplay is a drivers.Displayer over a framebuffer with emulated
// hardware scrolling: SetScroll only records which framebuffer row is shown
// at the top, and snapshots rotate the rows accordingly.
type fbDisplay struct {
	fb     *framebuffer
	scroll int
}

func newFBDisplay(fb *framebuffer) *fbDisplay {
	return &fbDisplay{fb: fb}
}

func (d *fbDisplay) Size() (x, y int16) {
	return int16(d.fb.width), int16(d.fb.height)
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.width || iy < 0 || iy >= d.fb.height {
		return
	}
	pixel := rgb565(c.R, c.G, c.B)
	off := iy*d.fb.stride + ix*2
	d.fb.buf[off] = byte(pixel)
	d.fb.buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplay) Display() error { return nil }

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	w, h := d.fb.width, d.fb.height
	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := rgb565(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for py := y0; py < y1; py++ {
		row := py * d.fb.stride
		for px := x0; px < x1; px++ {
			d.fb.buf[row+px*2] = lo
			d.fb.buf[row+px*2+1] = hi
		}
	}
	return nil
}

// ScrollUp moves the content up by lines rows and clears the exposed bottom.
func (d *fbDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	n := int(lines)
	if n <= 0 {
		return nil
	}
	h := d.fb.height
	if n >= h {
		return d.FillRectangle(0, 0, int16(d.fb.width), int16(h), bg)
	}
	copy(d.fb.buf, d.fb.buf[n*d.fb.stride:])
	return d.FillRectangle(0, int16(h-n), int16(d.fb.width), int16(n), bg)
}

func (d *fbDisplay) SetScroll(line int16) {
	if d.fb.height == 0 {
		return
	}
	d.scroll = int(line) % d.fb.height
	if d.scroll < 0 {
		d.scroll += d.fb.height
	}
}

func (d *fbDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

// row maps a screen row to the framebuffer row shown there.
func (d *fbDisplay) row(y int) int {
	return (y + d.scroll) % d.fb.height
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
