package scanvideo

// Status of a scanline buffer.
type Status uint8

const (
	// StatusEmpty buffers are owned by the engine and hold no data.
	StatusEmpty Status = iota
	// StatusFilling buffers are borrowed by a producer that is writing into them.
	StatusFilling
	// StatusOK buffers are complete and ready to be scanned out.
	StatusOK
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusFilling:
		return "filling"
	case StatusOK:
		return "ok"
	}
	return "invalid"
}

// DefaultBufferWords is the scanline buffer capacity, in 32-bit words, used
// by the scanvideo hardware library when not configured otherwise.
const DefaultBufferWords = 180

// ScanlineBuffer holds the encoded data for one scanline. It is owned by the
// engine and lent to the producer between BeginScanlineGeneration and
// EndScanlineGeneration. After submission it must not be touched.
type ScanlineBuffer struct {
	// ScanlineID holds the frame number in the upper 16 bits and the
	// scanline number in the lower 16 bits.
	ScanlineID uint32
	// Data holds 16-bit tokens packed two per word, low half first.
	Data []uint32
	// DataUsed is the number of words of Data holding valid tokens.
	DataUsed int
	Status   Status
}

// NewScanlineBuffer allocates an empty buffer of the given word capacity.
func NewScanlineBuffer(words int) *ScanlineBuffer {
	return &ScanlineBuffer{Data: make([]uint32, words)}
}

// Capacity returns the number of words the buffer can hold.
func (b *ScanlineBuffer) Capacity() int { return len(b.Data) }

// FrameNumber returns the frame this buffer belongs to.
func (b *ScanlineBuffer) FrameNumber() uint16 { return FrameNumber(b.ScanlineID) }

// ScanlineNumber returns the row, in mode coordinates, this buffer is displayed on.
func (b *ScanlineBuffer) ScanlineNumber() uint16 { return ScanlineNumber(b.ScanlineID) }

// Reset returns the buffer to the empty state. The data is not cleared.
func (b *ScanlineBuffer) Reset() {
	b.DataUsed = 0
	b.Status = StatusEmpty
}

// ScanlineID packs a frame and scanline number into a scanline id.
func ScanlineID(frame, scanline uint16) uint32 {
	return uint32(frame)<<16 | uint32(scanline)
}

// FrameNumber extracts the frame number from a scanline id.
func FrameNumber(id uint32) uint16 { return uint16(id >> 16) }

// ScanlineNumber extracts the scanline number from a scanline id.
func ScanlineNumber(id uint32) uint16 { return uint16(id) }

// MaxScanlineWords returns the buffer capacity needed to encode a scanline of
// mode where every 4-pixel cell is its own color run: three tokens per cell,
// two for the terminating pixel and up to two for the end of line marker,
// plus the one word that must stay free after the data.
func MaxScanlineWords(mode Mode) int {
	cells := int(mode.Width) / 4
	if cells == 0 {
		cells = 1
	}
	tokens := 3*cells + 2 + 2
	return (tokens+1)/2 + 1
}
