package scanvideo

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownMode is returned by ModeByName for names not in the mode table.
var ErrUnknownMode = errors.New("scanvideo: unknown video mode")

// Timing describes the raw signal timing of a video output. Horizontal values
// are in pixel clocks, vertical values in lines.
type Timing struct {
	ClockFreq uint32

	HActive       uint16
	VActive       uint16
	HFrontPorch   uint16
	HPulse        uint16
	HTotal        uint16
	HSyncPolarity uint8

	VFrontPorch   uint16
	VPulse        uint16
	VTotal        uint16
	VSyncPolarity uint8

	EnableClock   bool
	ClockPolarity uint8
	EnableDEN     bool
}

// LineRate returns the number of raw lines output per second.
func (t *Timing) LineRate() float64 {
	if t.HTotal == 0 {
		return 0
	}
	return float64(t.ClockFreq) / float64(t.HTotal)
}

// FrameRate returns the refresh rate in frames per second.
func (t *Timing) FrameRate() float64 {
	if t.VTotal == 0 {
		return 0
	}
	return t.LineRate() / float64(t.VTotal)
}

// Mode is a video mode: a signal timing plus the logical resolution that
// scanlines are generated at. Width and Height are the timing's active area
// divided by XScale and YScale.
type Mode struct {
	Name   string
	Timing *Timing
	Width  uint16
	Height uint16
	XScale uint16
	YScale uint16
}

// MinWidth is the narrowest line a pattern can cover: one 4 pixel cell.
const MinWidth = 4

// Valid reports whether m can drive scanline generation.
func (m Mode) Valid() bool {
	return m.Timing != nil && m.Width >= MinWidth && m.Height > 0 && m.XScale > 0 && m.YScale > 0
}

// LinePeriod returns how long the display spends on one generated scanline,
// which is YScale raw lines.
func (m Mode) LinePeriod() time.Duration {
	if m.Timing == nil || m.Timing.ClockFreq == 0 {
		return 0
	}
	ns := uint64(m.Timing.HTotal) * uint64(m.YScale) * uint64(time.Second) / uint64(m.Timing.ClockFreq)
	return time.Duration(ns)
}

// Standard timings.
var (
	// TimingVGA640x480_60 is the industry standard 640x480@60 timing at a
	// slightly reduced 25MHz pixel clock.
	TimingVGA640x480_60 = &Timing{
		ClockFreq: 25000000,

		HActive:       640,
		VActive:       480,
		HFrontPorch:   16,
		HPulse:        96,
		HTotal:        800,
		HSyncPolarity: 1,

		VFrontPorch:   10,
		VPulse:        2,
		VTotal:        525,
		VSyncPolarity: 1,
	}

	// TimingTFT800x480_50 drives 800x480 parallel RGB panels with a data enable.
	TimingTFT800x480_50 = &Timing{
		ClockFreq: 24000000,

		HActive:     800,
		VActive:     480,
		HFrontPorch: 12,
		HPulse:      2,
		HTotal:      900,

		VFrontPorch: 5,
		VPulse:      2,
		VTotal:      533,

		EnableClock: true,
		EnableDEN:   true,
	}
)

// Standard modes.
var (
	VGA640x480_60 = Mode{Name: "vga_640x480_60", Timing: TimingVGA640x480_60, Width: 640, Height: 480, XScale: 1, YScale: 1}
	VGA320x240_60 = Mode{Name: "vga_320x240_60", Timing: TimingVGA640x480_60, Width: 320, Height: 240, XScale: 2, YScale: 2}
	VGA213x160_60 = Mode{Name: "vga_213x160_60", Timing: TimingVGA640x480_60, Width: 213, Height: 160, XScale: 3, YScale: 3}
	VGA160x120_60 = Mode{Name: "vga_160x120_60", Timing: TimingVGA640x480_60, Width: 160, Height: 120, XScale: 4, YScale: 4}
	TFT800x480_50 = Mode{Name: "tft_800x480_50", Timing: TimingTFT800x480_50, Width: 800, Height: 480, XScale: 1, YScale: 1}
	TFT400x240_50 = Mode{Name: "tft_400x240_50", Timing: TimingTFT800x480_50, Width: 400, Height: 240, XScale: 2, YScale: 2}
)

// Modes lists the standard modes.
func Modes() []Mode {
	return []Mode{VGA640x480_60, VGA320x240_60, VGA213x160_60, VGA160x120_60, TFT800x480_50, TFT400x240_50}
}

// ModeByName looks up a standard mode. Matching ignores case.
func ModeByName(name string) (Mode, error) {
	for _, m := range Modes() {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return Mode{}, ErrUnknownMode
}
