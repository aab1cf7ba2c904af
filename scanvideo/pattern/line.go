package pattern

import (
	"errors"
	"fmt"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/composable"
	"github.com/tinygo-org/scanvideo/scanvideo/control"
)

// ErrWidthMismatch is the panic value wrapped when a generator does not
// cover exactly the width of the line.
var ErrWidthMismatch = errors.New("pattern: encoded width does not match mode width")

// CellWidth is the width in pixels of the horizontal unit generators work in.
const CellWidth = 4

// Geometry is the part of a video mode the generators depend on.
type Geometry struct {
	Width  int
	Height int
	// Cells is the number of CellWidth wide cells per line. The last cell
	// also covers the Width%CellWidth leftover pixels.
	Cells int
}

// GeometryOf returns the geometry of mode.
func GeometryOf(mode scanvideo.Mode) Geometry {
	g := Geometry{Width: int(mode.Width), Height: int(mode.Height)}
	g.Cells = g.Width / CellWidth
	return g
}

// CellSpan returns the width in pixels of cell i.
func (g Geometry) CellSpan(i int) int {
	if i == g.Cells-1 {
		return CellWidth + g.Width%CellWidth
	}
	return CellWidth
}

// Line collects the spans of one scanline, merges neighbours of the same
// color and encodes them as color runs. A Line is reused across scanlines to
// keep allocation off the render path.
type Line struct {
	w       composable.Writer
	color   scanvideo.Pixel
	pending int
	width   int
}

// Span appends n pixels of color c. Spans of the same color as the previous
// one extend it.
func (l *Line) Span(c scanvideo.Pixel, n int) {
	if n <= 0 {
		return
	}
	if l.pending > 0 && c == l.color {
		l.pending += n
		return
	}
	l.flush()
	l.color = c
	l.pending = n
}

func (l *Line) flush() {
	if l.pending == 0 {
		return
	}
	l.w.ColorRun(l.color, l.pending)
	l.width += l.pending
	l.pending = 0
}

// Fill renders row of gen into buf and finishes it: the spans are encoded,
// checked to cover exactly g.Width pixels and terminated. buf is ready to
// be submitted when Fill returns. Encoding contract breaches panic.
func (l *Line) Fill(buf *scanvideo.ScanlineBuffer, gen Generator, g Geometry, row, offset int, p control.Params) {
	l.w.Reset(buf)
	l.pending = 0
	l.width = 0

	gen.Render(l, g, row, offset, p)
	l.flush()
	if l.width != g.Width {
		panic(fmt.Errorf("%w: %d != %d", ErrWidthMismatch, l.width, g.Width))
	}
	l.w.Terminate()
	l.w.Finish()
}
