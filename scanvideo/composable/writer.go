package composable

import (
	"errors"
	"fmt"

	"github.com/tinygo-org/scanvideo/scanvideo"
)

// Contract breaches. A Writer panics with a *FormatViolation wrapping one of
// these: continuing would hand the engine a buffer it cannot scan out.
var (
	ErrOverrun     = errors.New("composable: scanline buffer overrun")
	ErrMisaligned  = errors.New("composable: scanline not word aligned")
	ErrRunTooShort = errors.New("composable: run shorter than 3 pixels")
)

// FormatViolation describes a broken scanline encoding.
type FormatViolation struct {
	Err      error
	Tokens   int // tokens written when the violation was detected
	Capacity int // buffer capacity in words
}

func (v *FormatViolation) Error() string {
	return fmt.Sprintf("%v (tokens=%d capacity=%d words)", v.Err, v.Tokens, v.Capacity)
}

func (v *FormatViolation) Unwrap() error { return v.Err }

// Writer encodes instructions into a borrowed scanline buffer. The zero
// value is not usable; call Reset or NewWriter.
type Writer struct {
	buf    *scanvideo.ScanlineBuffer
	n      int // tokens written
	pixels int
}

// NewWriter returns a Writer that fills buf from its start.
func NewWriter(buf *scanvideo.ScanlineBuffer) *Writer {
	w := &Writer{}
	w.Reset(buf)
	return w
}

// Reset points the Writer at buf and marks buf as being filled.
func (w *Writer) Reset(buf *scanvideo.ScanlineBuffer) {
	buf.Status = scanvideo.StatusFilling
	buf.DataUsed = 0
	*w = Writer{buf: buf}
}

// Tokens returns the number of tokens written so far.
func (w *Writer) Tokens() int { return w.n }

// Pixels returns the number of pixels encoded so far.
func (w *Writer) Pixels() int { return w.pixels }

// ColorRun writes n pixels of color c. n must be at least MinRunLength.
func (w *Writer) ColorRun(c scanvideo.Pixel, n int) {
	if n < MinRunLength {
		w.violation(ErrRunTooShort)
	}
	w.need(colorRunTokens)
	w.put(OpColorRun)
	w.put(Token(c))
	w.put(Token(n - MinRunLength))
	w.pixels += n
}

// RawRun writes each pixel of p literally. p must hold at least
// MinRunLength pixels.
func (w *Writer) RawRun(p []scanvideo.Pixel) {
	if len(p) < MinRunLength {
		w.violation(ErrRunTooShort)
	}
	w.need(len(p) + 2)
	w.put(OpRawRun)
	w.put(Token(p[0]))
	w.put(Token(len(p) - MinRunLength))
	for _, px := range p[1:] {
		w.put(Token(px))
	}
	w.pixels += len(p)
}

// Raw1P writes a single pixel.
func (w *Writer) Raw1P(c scanvideo.Pixel) {
	w.need(raw1PTokens)
	w.put(OpRaw1P)
	w.put(Token(c))
	w.pixels++
}

// Raw2P writes two pixels.
func (w *Writer) Raw2P(c0, c1 scanvideo.Pixel) {
	w.need(raw2PTokens)
	w.put(OpRaw2P)
	w.put(Token(c0))
	w.put(Token(c1))
	w.pixels += 2
}

// EndOfLine writes the end of line instruction that leaves the cursor on a
// word boundary: EOLAlign after an odd number of tokens, EOLSkipAlign and a
// pad token after an even number.
func (w *Writer) EndOfLine() {
	if w.n&1 != 0 {
		w.need(1)
		w.put(OpEOLAlign)
		return
	}
	w.need(2)
	w.put(OpEOLSkipAlign)
	w.put(alignPad)
}

// Terminate ends the line with the mandatory black pixel and the end of
// line instruction.
func (w *Writer) Terminate() {
	w.Raw1P(scanvideo.Black)
	w.pixels-- // the terminating pixel is blanking, not picture
	w.EndOfLine()
}

// Finish checks the encoding and hands the data over: DataUsed is set to
// the words written and the status to OK. The data must end on a word
// boundary and leave at least one word of the buffer unused.
func (w *Writer) Finish() {
	if w.n&1 != 0 {
		w.violation(ErrMisaligned)
	}
	used := w.n / 2
	if used >= w.buf.Capacity() {
		w.violation(ErrOverrun)
	}
	w.buf.DataUsed = used
	w.buf.Status = scanvideo.StatusOK
}

// need panics before writing a partial instruction that cannot fit.
func (w *Writer) need(tokens int) {
	if (w.n+tokens+1)/2 > w.buf.Capacity() {
		w.violation(ErrOverrun)
	}
}

func (w *Writer) put(t Token) {
	word := w.n >> 1
	if w.n&1 == 0 {
		w.buf.Data[word] = uint32(t)
	} else {
		w.buf.Data[word] = w.buf.Data[word]&0xffff | uint32(t)<<16
	}
	w.n++
}

func (w *Writer) violation(err error) {
	panic(&FormatViolation{Err: err, Tokens: w.n, Capacity: w.buf.Capacity()})
}
