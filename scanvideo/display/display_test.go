package display

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/composable"
)

var (
	red  = scanvideo.Red.Color()
	blue = scanvideo.Blue.Color()
)

// halves encodes a scanline of mode: red on the left half, blue on the right.
func halves(mode scanvideo.Mode, row uint16) *scanvideo.ScanlineBuffer {
	buf := scanvideo.NewScanlineBuffer(16)
	buf.ScanlineID = scanvideo.ScanlineID(0, row)
	w := composable.NewWriter(buf)
	w.ColorRun(scanvideo.Red, int(mode.Width)/2)
	w.ColorRun(scanvideo.Blue, int(mode.Width)-int(mode.Width)/2)
	w.Terminate()
	w.Finish()
	return buf
}

func TestSinkDrawsRuns(t *testing.T) {
	mode := scanvideo.VGA160x120_60
	img := NewImage(160, 120)
	s := NewSink(img, mode)

	s.Scanline(halves(mode, 5))
	snap := img.Snapshot()
	assert.Equal(t, red, snap.RGBAAt(0, 5))
	assert.Equal(t, red, snap.RGBAAt(79, 5))
	assert.Equal(t, blue, snap.RGBAAt(80, 5))
	assert.Equal(t, blue, snap.RGBAAt(159, 5))
	assert.Equal(t, color.RGBA{A: 0xff}, snap.RGBAAt(0, 4))

	lines, frames, errs := s.Stats()
	assert.Equal(t, [3]uint64{1, 0, 0}, [3]uint64{lines, frames, errs})
}

func TestSinkScaled(t *testing.T) {
	mode := scanvideo.VGA320x240_60
	img := NewImage(640, 480)
	s := NewSink(img, mode, Scaled())

	s.Scanline(halves(mode, 1))
	snap := img.Snapshot()
	for _, y := range []int{2, 3} {
		assert.Equal(t, red, snap.RGBAAt(0, y))
		assert.Equal(t, red, snap.RGBAAt(319, y))
		assert.Equal(t, blue, snap.RGBAAt(320, y))
		assert.Equal(t, blue, snap.RGBAAt(639, y))
	}
	assert.Equal(t, color.RGBA{A: 0xff}, snap.RGBAAt(0, 4))
}

func TestSinkClipsToDisplay(t *testing.T) {
	mode := scanvideo.VGA160x120_60
	img := NewImage(100, 10)
	s := NewSink(img, mode)

	s.Scanline(halves(mode, 3))
	s.Scanline(halves(mode, 50))
	snap := img.Snapshot()
	assert.Equal(t, blue, snap.RGBAAt(99, 3))
	lines, _, _ := s.Stats()
	assert.Equal(t, uint64(2), lines)
}

// pixels is a Displayer without a rectangle fill.
type pixels struct {
	set     map[image.Point]color.RGBA
	display int
	err     error
}

func (p *pixels) Size() (x, y int16)                { return 8, 4 }
func (p *pixels) SetPixel(x, y int16, c color.RGBA) { p.set[image.Pt(int(x), int(y))] = c }
func (p *pixels) Display() error {
	p.display++
	return p.err
}

func TestSinkSetPixelFallback(t *testing.T) {
	mode := scanvideo.Mode{Name: "tiny", Timing: scanvideo.TimingVGA640x480_60, Width: 8, Height: 4, XScale: 1, YScale: 1}
	dst := &pixels{set: map[image.Point]color.RGBA{}, err: errors.New("bus stalled")}
	s := NewSink(dst, mode)

	s.Scanline(halves(mode, 3))
	assert.Len(t, dst.set, 8)
	assert.Equal(t, red, dst.set[image.Pt(3, 3)])
	assert.Equal(t, blue, dst.set[image.Pt(4, 3)])

	// Row 3 is the last row of the mode: the frame is shown even when the
	// display reports an error.
	assert.Equal(t, 1, dst.display)
	_, frames, _ := s.Stats()
	assert.Equal(t, uint64(1), frames)
}

func TestSinkPublishesFrames(t *testing.T) {
	mode := scanvideo.VGA160x120_60
	img := NewImage(160, 120)
	var got []int
	img.OnFrame = func(frame int, snap *image.RGBA) error {
		got = append(got, frame)
		assert.Equal(t, blue, snap.RGBAAt(159, 119))
		return nil
	}
	s := NewSink(img, mode)

	for row := uint16(0); row < mode.Height; row++ {
		s.Scanline(halves(mode, row))
	}
	s.Scanline(halves(mode, 119))
	assert.Equal(t, []int{0, 1}, got)
	assert.Equal(t, 2, img.Frames())
}

func TestSinkCountsDecodeErrors(t *testing.T) {
	mode := scanvideo.VGA160x120_60
	img := NewImage(160, 120)
	s := NewSink(img, mode)

	buf := scanvideo.NewScanlineBuffer(4)
	buf.Data[0] = 0x0009_0009
	buf.DataUsed = 1
	s.Scanline(buf)
	s.Scanline(buf)

	lines, _, errs := s.Stats()
	assert.Equal(t, uint64(0), lines)
	assert.Equal(t, uint64(2), errs)
	require.Equal(t, color.RGBA{A: 0xff}, img.Snapshot().RGBAAt(0, 0))
}
