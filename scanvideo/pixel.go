package scanvideo

import "image/color"

// Pixel is a 16-bit scanvideo pixel word holding 5 bits per color channel.
type Pixel uint16

// Channel bit positions within a Pixel. Bit 5 is the unused alpha bit.
const (
	PixelRShift = 0
	PixelGShift = 6
	PixelBShift = 11

	channelMax = 0x1f
)

// RGB5 packs three 5-bit channel values into a Pixel. Values are truncated
// to 5 bits.
func RGB5(r, g, b uint8) Pixel {
	return Pixel(r&channelMax)<<PixelRShift | Pixel(g&channelMax)<<PixelGShift | Pixel(b&channelMax)<<PixelBShift
}

// Common colors.
const (
	Black Pixel = 0
	White Pixel = channelMax<<PixelRShift | channelMax<<PixelGShift | channelMax<<PixelBShift
	Red   Pixel = channelMax << PixelRShift
	Green Pixel = channelMax << PixelGShift
	Blue  Pixel = channelMax << PixelBShift
)

// RGB5 unpacks the 5-bit channel values.
func (p Pixel) RGB5() (r, g, b uint8) {
	return uint8(p>>PixelRShift) & channelMax, uint8(p>>PixelGShift) & channelMax, uint8(p>>PixelBShift) & channelMax
}

// Color converts to an opaque 8-bit color, replicating the top channel bits
// into the low bits so 0x1f maps to 0xff.
func (p Pixel) Color() color.RGBA {
	r, g, b := p.RGB5()
	return color.RGBA{R: expand5(r), G: expand5(g), B: expand5(b), A: 0xff}
}

func expand5(v uint8) uint8 { return v<<3 | v>>2 }
