// Package composable encodes scanlines in the composable token format
// consumed by the video-timing engine, and decodes them back into runs of
// pixels.
//
// A scanline is a sequence of 16-bit tokens packed two per 32-bit word, low
// half first. Each instruction starts with an opcode token followed by its
// arguments:
//
//	ColorRun      color, n-3         n pixels of one color (n >= 3)
//	RawRun        p0, n-3, p1..pn-1  n literal pixels (n >= 3)
//	Raw1P         p0                 one literal pixel
//	Raw2P         p0, p1             two literal pixels
//	EOLAlign                         end of line, cursor was odd
//	EOLSkipAlign  pad                end of line, cursor was even
//
// Every line ends with a black Raw1P so color does not bleed into blanking,
// followed by the end of line instruction matching the token parity so the
// next line starts on a word boundary.
package composable

// Token is one 16-bit element of an encoded scanline.
type Token = uint16

// Opcodes.
const (
	OpColorRun Token = iota
	OpEOLAlign
	OpEOLSkipAlign
	OpRawRun
	OpRaw1P
	OpRaw2P
)

// MinRunLength is the shortest run a ColorRun or RawRun can encode. The
// engine spends the first three pixels of a run decoding it.
const MinRunLength = 3

// alignPad is written after EOLSkipAlign. Its value is ignored.
const alignPad Token = 0xffff

// Token counts of fixed size instructions.
const (
	colorRunTokens = 3
	raw1PTokens    = 2
	raw2PTokens    = 3
)

func opName(op Token) string {
	switch op {
	case OpColorRun:
		return "COLOR_RUN"
	case OpEOLAlign:
		return "EOL_ALIGN"
	case OpEOLSkipAlign:
		return "EOL_SKIP_ALIGN"
	case OpRawRun:
		return "RAW_RUN"
	case OpRaw1P:
		return "RAW_1P"
	case OpRaw2P:
		return "RAW_2P"
	}
	return "UNKNOWN"
}
