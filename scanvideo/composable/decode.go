package composable

import (
	"errors"
	"fmt"

	"github.com/tinygo-org/scanvideo/scanvideo"
)

// Decoding errors.
var (
	ErrTruncated         = errors.New("composable: truncated instruction")
	ErrUnknownToken      = errors.New("composable: unknown opcode")
	ErrMissingEOL        = errors.New("composable: missing end of line")
	ErrMissingTerminator = errors.New("composable: line not terminated by a black pixel")
)

// Run is a horizontal span of identically colored pixels.
type Run struct {
	Color  scanvideo.Pixel
	Length int
}

// Line is a decoded scanline.
type Line struct {
	// Runs covers the visible part of the line, left to right. Literal
	// pixels appear as runs of length 1.
	Runs []Run
}

// Width returns the number of visible pixels on the line.
func (l Line) Width() int {
	n := 0
	for _, r := range l.Runs {
		n += r.Length
	}
	return n
}

// At returns the color of pixel x, or black past the end of the line.
func (l Line) At(x int) scanvideo.Pixel {
	for _, r := range l.Runs {
		if x < r.Length {
			return r.Color
		}
		x -= r.Length
	}
	return scanvideo.Black
}

// Decode parses the tokens of a finished buffer.
func Decode(buf *scanvideo.ScanlineBuffer) (Line, error) {
	return DecodeWords(buf.Data, buf.DataUsed)
}

// DecodeWords parses the first used words of data. The line must end with a
// black terminating pixel and an end of line instruction; the terminating
// pixel is not part of the returned runs.
func DecodeWords(data []uint32, used int) (Line, error) {
	var l Line
	if used > len(data) {
		return l, ErrTruncated
	}
	d := decoder{data: data, n: used * 2}
	var terminated bool // previous instruction was a black Raw1P
	for {
		if d.pos >= d.n {
			return l, ErrMissingEOL
		}
		at := d.pos
		op := d.next()
		prevTerminated := terminated
		terminated = false
		switch op {
		case OpColorRun:
			c, ok1 := d.take()
			n, ok2 := d.take()
			if !ok1 || !ok2 {
				return l, truncated(at)
			}
			l.append(scanvideo.Pixel(c), int(n)+MinRunLength)
		case OpRawRun:
			p0, ok1 := d.take()
			n, ok2 := d.take()
			if !ok1 || !ok2 {
				return l, truncated(at)
			}
			l.append(scanvideo.Pixel(p0), 1)
			for i := 1; i < int(n)+MinRunLength; i++ {
				p, ok := d.take()
				if !ok {
					return l, truncated(at)
				}
				l.append(scanvideo.Pixel(p), 1)
			}
		case OpRaw1P:
			p, ok := d.take()
			if !ok {
				return l, truncated(at)
			}
			l.append(scanvideo.Pixel(p), 1)
			terminated = scanvideo.Pixel(p) == scanvideo.Black
		case OpRaw2P:
			p0, ok1 := d.take()
			p1, ok2 := d.take()
			if !ok1 || !ok2 {
				return l, truncated(at)
			}
			l.append(scanvideo.Pixel(p0), 1)
			l.append(scanvideo.Pixel(p1), 1)
		case OpEOLAlign, OpEOLSkipAlign:
			if op == OpEOLSkipAlign {
				if _, ok := d.take(); !ok {
					return l, truncated(at)
				}
			}
			if !prevTerminated {
				return l, ErrMissingTerminator
			}
			l.stripTerminator()
			return l, nil
		default:
			return l, fmt.Errorf("%w %#04x at token %d", ErrUnknownToken, op, at)
		}
	}
}

// append adds a span, merging it into the previous run when the color
// matches.
func (l *Line) append(c scanvideo.Pixel, n int) {
	if k := len(l.Runs); k > 0 && l.Runs[k-1].Color == c {
		l.Runs[k-1].Length += n
		return
	}
	l.Runs = append(l.Runs, Run{Color: c, Length: n})
}

func (l *Line) stripTerminator() {
	k := len(l.Runs)
	l.Runs[k-1].Length--
	if l.Runs[k-1].Length == 0 {
		l.Runs = l.Runs[:k-1]
	}
}

func truncated(at int) error {
	return fmt.Errorf("%w at token %d", ErrTruncated, at)
}

type decoder struct {
	data []uint32
	n    int
	pos  int
}

func (d *decoder) next() Token {
	w := d.data[d.pos>>1]
	if d.pos&1 != 0 {
		w >>= 16
	}
	d.pos++
	return Token(w)
}

func (d *decoder) peek(ahead int) (Token, bool) {
	i := d.pos + ahead
	if i >= d.n {
		return 0, false
	}
	w := d.data[i>>1]
	if i&1 != 0 {
		w >>= 16
	}
	return Token(w), true
}

func (d *decoder) take() (Token, bool) {
	if d.pos >= d.n {
		return 0, false
	}
	return d.next(), true
}

// String renders the line as a compact run list, for test failures.
func (l Line) String() string {
	s := ""
	for i, r := range l.Runs {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%04x*%d", uint16(r.Color), r.Length)
	}
	return s
}

// Disassemble lists the instructions of an encoded buffer, one per line.
func Disassemble(buf *scanvideo.ScanlineBuffer) string {
	d := decoder{data: buf.Data, n: buf.DataUsed * 2}
	s := ""
	for d.pos < d.n {
		at := d.pos
		op := d.next()
		args := 0
		switch op {
		case OpColorRun, OpRaw2P:
			args = 2
		case OpRaw1P, OpEOLSkipAlign:
			args = 1
		case OpRawRun:
			if n, ok := d.peek(1); ok {
				args = int(n) + MinRunLength + 1
			}
		}
		s += fmt.Sprintf("%3d: %s", at, opName(op))
		for i := 0; i < args; i++ {
			t, ok := d.take()
			if !ok {
				break
			}
			s += fmt.Sprintf(" %#04x", t)
		}
		s += "\n"
	}
	return s
}
