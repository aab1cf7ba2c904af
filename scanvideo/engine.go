// Package scanvideo holds the types shared by scanline producers and the
// video-timing engines that consume their output: video modes, pixels,
// scanline buffers and the engine and analog input interfaces.
//
// A producer repeatedly borrows an empty buffer with BeginScanlineGeneration,
// fills it with composable tokens and hands it back with
// EndScanlineGeneration. The engine displays buffers in the order they were
// handed out, one per line period.
package scanvideo

import (
	"context"
	"errors"
)

// Engine errors.
var (
	ErrInvalidMode    = errors.New("scanvideo: invalid video mode")
	ErrAlreadySetup   = errors.New("scanvideo: engine already set up")
	ErrNotSetup       = errors.New("scanvideo: engine not set up")
	ErrTimingDisabled = errors.New("scanvideo: timing not enabled")
	ErrClosed         = errors.New("scanvideo: engine closed")
)

// Engine is a video-timing engine. It owns a pool of scanline buffers and
// scans them out at the mode's line rate.
type Engine interface {
	// Setup configures the engine for mode. It is called once, before timing
	// is enabled.
	Setup(mode Mode) error
	// SetTimingEnabled starts or stops signal generation.
	SetTimingEnabled(enabled bool)
	// BeginScanlineGeneration blocks until an empty buffer is available and
	// returns it stamped with the scanline id it will be displayed at.
	// Cancelling ctx unblocks the call with ctx's error.
	BeginScanlineGeneration(ctx context.Context) (*ScanlineBuffer, error)
	// EndScanlineGeneration submits a filled buffer for display.
	EndScanlineGeneration(buf *ScanlineBuffer)
}

// ADC is an analog input with selectable channels, sampled synchronously.
type ADC interface {
	// SelectChannel chooses the input channel used by subsequent reads.
	SelectChannel(channel uint8)
	// Read returns a 12-bit sample (0..ADCFullScale-1).
	Read() uint16
}

// ADCFullScale is the number of distinct values a 12-bit ADC sample can take.
const ADCFullScale = 1 << 12
