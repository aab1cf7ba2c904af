// Package display paints decoded scanlines onto a pixel display, so that
// the software engine can drive an SPI panel or an in-memory image.
package display

import (
	"image/color"
	"sync/atomic"

	"github.com/rs/zerolog"
	"tinygo.org/x/drivers"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/composable"
)

// filler is implemented by displays that can fill rectangles faster than
// pixel by pixel, like the st7789.
type filler interface {
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// Option configures a Sink.
type Option func(*Sink)

// Scaled draws each pixel as an XScale by YScale block, the way the mode's
// timing would show it.
func Scaled() Option { return func(s *Sink) { s.scaled = true } }

// WithLogger sets the sink logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Sink) { s.log = l } }

// Sink decodes scanlines and draws them on a display. It calls Display
// after the last scanline of every frame. Scanlines that fail to decode are
// counted and skipped. Scanline must be called from a single goroutine.
type Sink struct {
	dst    drivers.Displayer
	mode   scanvideo.Mode
	scaled bool
	log    zerolog.Logger

	w, h   int16
	xs, ys int16

	lines  atomic.Uint64
	frames atomic.Uint64
	errs   atomic.Uint64
}

// NewSink returns a sink drawing scanlines of mode on dst.
func NewSink(dst drivers.Displayer, mode scanvideo.Mode, opts ...Option) *Sink {
	s := &Sink{dst: dst, mode: mode, log: zerolog.Nop(), xs: 1, ys: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.scaled {
		s.xs, s.ys = int16(max(mode.XScale, 1)), int16(max(mode.YScale, 1))
	}
	s.w, s.h = dst.Size()
	return s
}

// Scanline implements soft.Sink.
func (s *Sink) Scanline(buf *scanvideo.ScanlineBuffer) {
	row := buf.ScanlineNumber()
	line, err := composable.Decode(buf)
	if err != nil {
		if s.errs.Add(1) == 1 {
			s.log.Error().Err(err).Uint32("id", buf.ScanlineID).Msg("undecodable scanline")
		}
	} else {
		s.draw(int16(row), line)
		s.lines.Add(1)
	}

	if row == s.mode.Height-1 {
		if err := s.dst.Display(); err != nil {
			s.log.Error().Err(err).Msg("display update failed")
		}
		s.frames.Add(1)
	}
}

func (s *Sink) draw(row int16, line composable.Line) {
	y := row * s.ys
	if y >= s.h {
		return
	}
	rows := min(s.ys, s.h-y)
	f, canFill := s.dst.(filler)

	var x int16
	for _, r := range line.Runs {
		if x >= s.w {
			return
		}
		n := min(int16(r.Length)*s.xs, s.w-x)
		c := r.Color.Color()
		if canFill {
			_ = f.FillRectangle(x, y, n, rows, c)
		} else {
			for dy := int16(0); dy < rows; dy++ {
				for dx := int16(0); dx < n; dx++ {
					s.dst.SetPixel(x+dx, y+dy, c)
				}
			}
		}
		x += n
	}
}

// Stats reports scanlines drawn, frames displayed and decode errors.
func (s *Sink) Stats() (lines, frames, errs uint64) {
	return s.lines.Load(), s.frames.Load(), s.errs.Load()
}
