// Package pattern implements the scanline pattern generators: color bars,
// checkerboard, sinusoidal color sweep and moving box.
//
// A Generator renders one scanline at a time from the row index, the
// animation offset and the resolved control parameters. It must cover the
// full line width; Line.Fill enforces that and terminates the line.
package pattern

import (
	"errors"
	"strings"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/control"
)

// ErrUnknownKind is returned by ParseKind.
var ErrUnknownKind = errors.New("pattern: unknown pattern")

// Generator renders scanlines of one pattern.
type Generator interface {
	// Render appends the spans of row to l.
	Render(l *Line, g Geometry, row, offset int, p control.Params)
	// OffsetBound is the largest animation offset the pattern uses before
	// the offset must restart from 0.
	OffsetBound(g Geometry) int
}

// DefaultOffsetBound bounds the animation offset of patterns that do not
// wrap on their own. It is a multiple of the 90 row period of the sine sweep.
const DefaultOffsetBound = 9000

// Kind identifies a pattern. Its value is the pattern selector code.
type Kind uint8

const (
	KindColorBars Kind = iota
	KindCheckerboard
	KindSineSweep
	KindMovingBox
)

var kindNames = [...]string{
	KindColorBars:    "colorbars",
	KindCheckerboard: "checkerboard",
	KindSineSweep:    "sine",
	KindMovingBox:    "box",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind parses a pattern name as returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return 0, ErrUnknownKind
}

// Generators indexed by Kind.
var generators = [...]Generator{
	KindColorBars:    ColorBars{},
	KindCheckerboard: Checkerboard{Light: scanvideo.White, Dark: scanvideo.Black},
	KindSineSweep:    SineSweep{},
	KindMovingBox:    MovingBox{Background: scanvideo.Red, Box: scanvideo.Blue},
}

// Generator returns the standard generator for k, or the color bars for an
// unknown kind.
func (k Kind) Generator() Generator { return Select(int(k)) }

// Select is the dispatch table keyed on the pattern selector code. Codes
// outside the table select the default, the color bars.
func Select(code int) Generator {
	if code < 0 || code >= len(generators) {
		return generators[KindColorBars]
	}
	return generators[code]
}
