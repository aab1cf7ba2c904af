// Package control turns analog input samples into the discrete parameters
// that drive the pattern generators: block size, animation speed, pattern
// selection and brightness.
//
// A raw 12-bit sample is quantized into one of n+1 buckets with
// round(n*raw/4096) and the bucket indexes a fixed table. Bucket 0 is the
// default entry; bucket values outside a table fall back to it.
package control

import (
	"math"

	"github.com/tinygo-org/scanvideo/scanvideo"
)

// Bucket counts used for each parameter.
const (
	BlockSizeBuckets  = 5
	SpeedBuckets      = 4
	PatternBuckets    = 3
	BrightnessBuckets = 4
)

// Bucket quantizes a raw sample into 0..n. Samples beyond full scale are
// clamped. The arithmetic is single precision rounded half away from zero,
// which decides the exact bucket boundaries.
func Bucket(raw uint16, n int) int {
	if raw >= scanvideo.ADCFullScale {
		raw = scanvideo.ADCFullScale - 1
	}
	f := float32(n) * float32(raw) / float32(scanvideo.ADCFullScale)
	return int(math.Round(float64(f)))
}

// Speed is an animation rate: Increment is added to the offset every
// FramesPerAdvance frames.
type Speed struct {
	FramesPerAdvance int
	Increment        int
}

var (
	blockSizes = [BlockSizeBuckets + 1]int{128, 64, 32, 16, 8, 4}

	speeds = [SpeedBuckets + 1]Speed{
		{FramesPerAdvance: 1, Increment: 2}, // 2x
		{FramesPerAdvance: 2, Increment: 3}, // 1.5x
		{FramesPerAdvance: 1, Increment: 1}, // 1x
		{FramesPerAdvance: 2, Increment: 1}, // 0.5x
		{FramesPerAdvance: 4, Increment: 1}, // 0.25x
	}

	brightnessMasks = [BrightnessBuckets + 1]uint8{0x1f, 0x1e, 0x1c, 0x18, 0x10}
)

// BlockSizeFor maps a bucket to a checkerboard block size in lines. Larger
// buckets select smaller blocks.
func BlockSizeFor(bucket int) int { return blockSizes[clampBucket(bucket, BlockSizeBuckets)] }

// SpeedFor maps a bucket to an animation speed, fastest first.
func SpeedFor(bucket int) Speed { return speeds[clampBucket(bucket, SpeedBuckets)] }

// PatternFor maps a bucket to a pattern code.
func PatternFor(bucket int) int { return clampBucket(bucket, PatternBuckets) }

// BrightnessFor maps a bucket to a 5-bit intensity mask.
func BrightnessFor(bucket int) uint8 { return brightnessMasks[clampBucket(bucket, BrightnessBuckets)] }

// DefaultSpeed is the bucket 0 speed.
func DefaultSpeed() Speed { return speeds[0] }

func clampBucket(bucket, n int) int {
	if bucket < 0 || bucket > n {
		return 0
	}
	return bucket
}
