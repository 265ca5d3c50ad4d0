//go:build !tinygo && cgo

package hal

import (
	"context"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const statusHeight = 12

var (
	statusBG = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	statusFG = color.RGBA{R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF}
	ledOn    = color.RGBA{R: 0xFF, G: 0x30, B: 0x20, A: 0xFF}
	ledOff   = color.RGBA{R: 0x40, G: 0x10, B: 0x10, A: 0xFF}
)

// RunWindow opens a desktop window that shows cfg.Screen with a status bar
// and forwards typed input. It blocks until the window closes or ctx is done.
func RunWindow(ctx context.Context, cfg WindowConfig) error {
	w, h := cfg.Screen.Size()
	g := &hostGame{ctx: ctx, cfg: cfg, width: w, height: h + statusHeight}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w*cfg.scale(), g.height*cfg.scale())
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	if err == ebiten.Termination {
		return nil
	}
	return err
}

type hostGame struct {
	ctx    context.Context
	cfg    WindowConfig
	width  int
	height int
	kbd    hostKeyboard

	scratch []byte
	img     *ebiten.Image
	status  *image.RGBA
	bar     *ebiten.Image
}

func (g *hostGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if p := g.kbd.poll(); len(p) > 0 && g.cfg.OnInput != nil {
		g.cfg.OnInput(p)
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	w, h := g.cfg.Screen.Size()
	if g.img == nil {
		g.scratch = make([]byte, w*h*4)
		g.img = ebiten.NewImage(w, h)
		g.status = image.NewRGBA(image.Rect(0, 0, w, statusHeight))
		g.bar = ebiten.NewImage(w, statusHeight)
	}

	g.cfg.Screen.Snapshot(g.scratch)
	g.img.WritePixels(g.scratch)
	screen.DrawImage(g.img, nil)

	g.drawStatus()
	g.bar.WritePixels(g.status.Pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, float64(h))
	screen.DrawImage(g.bar, op)
}

func (g *hostGame) drawStatus() {
	d := rgbaDisplay{img: g.status}
	b := g.status.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.status.SetRGBA(x, y, statusBG)
		}
	}

	led := ledOff
	if g.cfg.LED != nil && g.cfg.LED() {
		led = ledOn
	}
	for y := 2; y < statusHeight-2; y++ {
		for x := 2; x < 10; x++ {
			g.status.SetRGBA(x, y, led)
		}
	}

	text := "LED"
	if g.cfg.Status != nil {
		text += "  " + g.cfg.Status()
	}
	tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 14, 9, text, statusFG)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// rgbaDisplay lets tinyfont draw into an image.RGBA.
type rgbaDisplay struct {
	img *image.RGBA
}

func (d rgbaDisplay) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d rgbaDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.img.SetRGBA(int(x), int(y), c)
}

func (d rgbaDisplay) Display() error { return nil }
