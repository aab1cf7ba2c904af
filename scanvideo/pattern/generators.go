package pattern

import (
	"math"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/control"
)

// Checkerboard alternates Light and Dark blocks BlockSize rows high and
// BlockSize pixels wide. Block sizes under 4 select the default.
type Checkerboard struct {
	Light scanvideo.Pixel
	Dark  scanvideo.Pixel
}

func (c Checkerboard) Render(l *Line, g Geometry, row, _ int, p control.Params) {
	b := p.BlockSize
	if b < 4 {
		b = control.BlockSizeFor(0)
	}
	top := row%(2*b) < b
	for x := 0; x < g.Cells; x++ {
		left := x%(b/2) < b/4
		col := c.Light
		if top == left {
			col = c.Dark
		}
		l.Span(col, g.CellSpan(x))
	}
}

func (Checkerboard) OffsetBound(Geometry) int { return DefaultOffsetBound }

// SineSweep shades each row by the cosine of its angle, shifted up by the
// animation offset for red and down for blue. Green is fixed. All cells of a
// row share one color.
type SineSweep struct {
	Fixed uint8
}

func (s SineSweep) Render(l *Line, g Geometry, row, offset int, p control.Params) {
	r := sweep(row + offset)
	b := sweep(row - offset)
	l.Span(scanvideo.RGB5(r, s.Fixed&0x1f, b), g.Width)
}

// sweep returns round(31*|cos(2n degrees)|).
func sweep(n int) uint8 {
	rad := 2 * float64(n) * math.Pi / 180
	return uint8(math.Round(31 * math.Abs(math.Cos(rad))))
}

func (SineSweep) OffsetBound(Geometry) int { return DefaultOffsetBound }

// MovingBox draws a Box colored block a third of the line wide on the middle
// third of the rows. The animation offset is its left edge in cells.
type MovingBox struct {
	Background scanvideo.Pixel
	Box        scanvideo.Pixel
}

func (m MovingBox) Render(l *Line, g Geometry, row, offset int, _ control.Params) {
	if row < g.Height/3 || row > 2*g.Height/3 {
		l.Span(m.Background, g.Width)
		return
	}
	end := offset + g.Cells/3
	for x := 0; x < g.Cells; x++ {
		col := m.Background
		if x >= offset && x < end {
			col = m.Box
		}
		l.Span(col, g.CellSpan(x))
	}
}

// OffsetBound keeps the box on screen: its left edge stops at two thirds of
// the line.
func (MovingBox) OffsetBound(g Geometry) int { return 2 * g.Cells / 3 }

// maxBars is the number of color bars on lines wide enough for all of them.
const maxBars = 32

// ColorBars draws a ramp of maxBars intensity steps in one primary color,
// red on the top third of the rows, green on the middle third and blue on
// the rest. Brightness masks the intensity.
type ColorBars struct{}

func (ColorBars) Render(l *Line, g Geometry, row, _ int, p control.Params) {
	n := min(maxBars, g.Width/CellWidth)
	if n < 1 {
		n = 1
	}
	var x int
	for i := 0; i < n; i++ {
		v := uint8(31)
		if n > 1 {
			v = uint8(i * 31 / (n - 1))
		}
		v &= p.Brightness
		end := (i + 1) * g.Width / n
		l.Span(barColor(row, g.Height, v), end-x)
		x = end
	}
}

func barColor(row, height int, v uint8) scanvideo.Pixel {
	switch {
	case row < height/3:
		return scanvideo.RGB5(v, 0, 0)
	case row < 2*height/3:
		return scanvideo.RGB5(0, v, 0)
	default:
		return scanvideo.RGB5(0, 0, v)
	}
}

func (ColorBars) OffsetBound(Geometry) int { return DefaultOffsetBound }
