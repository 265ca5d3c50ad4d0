package console

import (
	"image/color"
	"testing"
)

func lit(buf []byte) int {
	n := 0
	for i := 0; i+3 < len(buf); i += 4 {
		if buf[i] != 0 || buf[i+1] != 0 || buf[i+2] != 0 {
			n++
		}
	}
	return n
}

func TestConsoleWrite(t *testing.T) {
	c := New(160, 80)
	w, h := c.Size()
	if w != 160 || h != 80 {
		t.Fatalf("Size() = %d, %d, want 160, 80", w, h)
	}

	buf := make([]byte, w*h*4)
	c.Snapshot(buf)
	if n := lit(buf); n != 0 {
		t.Fatalf("lit pixels = %d on fresh console, want 0", n)
	}

	n, err := c.Write([]byte("10ms_Task!\r\n"))
	if err != nil || n != 12 {
		t.Fatalf("Write() = %d, %v, want 12, nil", n, err)
	}
	if c.Written() != 12 {
		t.Fatalf("Written() = %d, want 12", c.Written())
	}
	c.Snapshot(buf)
	if n := lit(buf); n == 0 {
		t.Fatalf("no lit pixels after Write")
	}

	c.Reset()
	c.Snapshot(buf)
	if n := lit(buf); n != 0 {
		t.Fatalf("lit pixels = %d after Reset, want 0", n)
	}
}

func TestConsoleScrollsManyLines(t *testing.T) {
	c := New(64, 30)
	for i := 0; i < 50; i++ {
		if _, err := c.Write([]byte("line\r\n")); err != nil {
			t.Fatalf("Write() = %v", err)
		}
	}
	buf := make([]byte, 64*30*4)
	c.Snapshot(buf)
	if n := lit(buf); n == 0 {
		t.Fatalf("no lit pixels after scrolling")
	}
}

func TestDisplayScrollRotatesRows(t *testing.T) {
	fb := newFramebuffer(4, 10)
	d := newFBDisplay(fb)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	d.SetPixel(1, 0, white)
	d.SetScroll(3)
	if got := d.row(7); got != 0 {
		t.Fatalf("row(7) = %d, want 0", got)
	}
	d.SetScroll(-1)
	if got := d.row(0); got != 9 {
		t.Fatalf("row(0) after SetScroll(-1) = %d, want 9", got)
	}
	d.SetScroll(13)
	if got := d.row(0); got != 3 {
		t.Fatalf("row(0) after SetScroll(13) = %d, want 3", got)
	}
}

func TestDisplayFillAndScrollUp(t *testing.T) {
	fb := newFramebuffer(4, 4)
	d := newFBDisplay(fb)
	red := color.RGBA{R: 255, A: 255}
	want := rgb565(255, 0, 0)

	if err := d.FillRectangle(-2, 2, 100, 100, red); err != nil {
		t.Fatalf("FillRectangle() = %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := fb.at(x, y)
			if (y >= 2) != (got == want) {
				t.Fatalf("pixel (%d,%d) = %#04x after fill", x, y, got)
			}
		}
	}

	if err := d.ScrollUp(2, color.RGBA{}); err != nil {
		t.Fatalf("ScrollUp() = %v", err)
	}
	for x := 0; x < 4; x++ {
		if fb.at(x, 0) != want || fb.at(x, 1) != want || fb.at(x, 2) != 0 || fb.at(x, 3) != 0 {
			t.Fatalf("column %d wrong after ScrollUp", x)
		}
	}

	d.SetPixel(10, 10, red)
	d.SetPixel(-1, 0, red)
}

func TestRGB565(t *testing.T) {
	if got := rgb565(255, 255, 255); got != 0xFFFF {
		t.Fatalf("rgb565(white) = %#04x, want 0xffff", got)
	}
	r, g, b := rgb888From565(0xFFFF)
	if r != 255 || g != 255 || b != 255 {
		t.Fatalf("rgb888From565(0xffff) = %d,%d,%d, want 255,255,255", r, g, b)
	}
}
