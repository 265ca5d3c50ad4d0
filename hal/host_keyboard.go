//go:build !tinygo && cgo

package hal

import (
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostKeyboard turns window key presses into the bytes a serial terminal
// would send.
type hostKeyboard struct {
	buf []byte
}

var controlKeys = []struct {
	key ebiten.Key
	b   byte
}{
	{ebiten.KeyEnter, '\r'},
	{ebiten.KeyBackspace, 0x08},
	{ebiten.KeyTab, '\t'},
	{ebiten.KeyEscape, 0x1b},
}

var ctrlLetters = []struct {
	key ebiten.Key
	b   byte
}{
	{ebiten.KeyA, 0x01},
	{ebiten.KeyC, 0x03},
	{ebiten.KeyD, 0x04},
	{ebiten.KeyE, 0x05},
	{ebiten.KeyL, 0x0c},
	{ebiten.KeyU, 0x15},
}

// poll returns the bytes typed since the last frame. The slice is reused.
func (k *hostKeyboard) poll() []byte {
	k.buf = k.buf[:0]

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	if ctrl {
		for _, c := range ctrlLetters {
			if inpututil.IsKeyJustPressed(c.key) {
				k.buf = append(k.buf, c.b)
			}
		}
		return k.buf
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		k.buf = utf8.AppendRune(k.buf, r)
	}
	for _, c := range controlKeys {
		if inpututil.IsKeyJustPressed(c.key) {
			k.buf = append(k.buf, c.b)
		}
	}
	return k.buf
}
