package display

import (
	"image"
	"image/color"
	"image/draw"

	"tinygo.org/x/drivers"

	"github.com/tinygo-org/scanvideo/scanvideo/internal/syncutil"
)

// Image is a drivers.Displayer drawing into memory. Display publishes the
// current contents to OnFrame.
type Image struct {
	// OnFrame, if set, receives a copy of the image on every Display call.
	OnFrame func(frame int, img *image.RGBA) error

	mu     syncutil.Mutex
	img    *image.RGBA
	frames int
}

var _ drivers.Displayer = (*Image)(nil)

// NewImage returns a black image of the given size.
func NewImage(width, height int) *Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{A: 0xff}), image.Point{}, draw.Src)
	return &Image{img: img}
}

// Size implements drivers.Displayer.
func (m *Image) Size() (x, y int16) {
	b := m.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

// SetPixel implements drivers.Displayer.
func (m *Image) SetPixel(x, y int16, c color.RGBA) {
	m.mu.Lock()
	m.img.SetRGBA(int(x), int(y), c)
	m.mu.Unlock()
}

// FillRectangle fills a rectangle, clipped to the image.
func (m *Image) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height))
	m.mu.Lock()
	draw.Draw(m.img, r, image.NewUniform(c), image.Point{}, draw.Src)
	m.mu.Unlock()
	return nil
}

// Display implements drivers.Displayer.
func (m *Image) Display() error {
	m.mu.Lock()
	n := m.frames
	m.frames++
	m.mu.Unlock()
	if m.OnFrame == nil {
		return nil
	}
	return m.OnFrame(n, m.Snapshot())
}

// Snapshot returns a copy of the current contents.
func (m *Image) Snapshot() *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := image.NewRGBA(m.img.Bounds())
	copy(out.Pix, m.img.Pix)
	return out
}

// Frames returns the number of Display calls so far.
func (m *Image) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}
