// Package tcellview is an optional live-preview device for a
// framebuffer.Buffer: it renders the current scanline/accumulation
// buffer as a half-block terminal image using tcell, the teacher's
// terminal library throughout render/terminal_renderer.go. Two vertical
// pixel rows share one terminal cell via the upper-half-block glyph,
// foreground/background carrying the two rows' colours.
package tcellview

import (
	"math/rand/v2"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/rtshade/framebuffer"
	"github.com/lixenwraith/rtshade/spectrum"
)

const upperHalfBlock = '▀'

// View owns a tcell.Screen and redraws it from a framebuffer.Buffer on
// demand; it does not own the render loop.
type View struct {
	screen tcell.Screen
	rng    *rand.Rand
}

func New() (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return &View{screen: screen, rng: rand.New(rand.NewPCG(1, 1))}, nil
}

func (v *View) Close() {
	v.screen.Fini()
}

// Draw paints buf into the screen, two image rows per terminal row.
func (v *View) Draw(buf *framebuffer.Buffer) {
	w, h := buf.Bounds()
	v.screen.Clear()
	for ty := 0; ty*2 < h; ty++ {
		topY := ty * 2
		botY := topY + 1
		for x := 0; x < w; x++ {
			top := toTcell(buf, x, topY, v.rng)
			bot := top
			if botY < h {
				bot = toTcell(buf, x, botY, v.rng)
			}
			style := tcell.StyleDefault.Foreground(top).Background(bot)
			v.screen.SetContent(x, ty, upperHalfBlock, nil, style)
		}
	}
	v.screen.Show()
}

func toTcell(buf *framebuffer.Buffer, x, y int, rng *rand.Rand) tcell.Color {
	r, g, b, _ := buf.Bytes(x, y, rng, spectrum.Const(0.5))
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// PollEvent exposes the underlying screen's event channel for callers
// that want to quit on a keypress.
func (v *View) PollEvent() tcell.Event {
	return v.screen.PollEvent()
}
