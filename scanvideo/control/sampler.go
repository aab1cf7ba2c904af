package control

import (
	"sync/atomic"

	"github.com/tinygo-org/scanvideo/scanvideo"
)

// Sampler resolves the current value of each logical control parameter.
// Implementations may sample hardware on every call.
type Sampler interface {
	BlockSize() int
	Speed() Speed
	Pattern() int
	Brightness() uint8
}

// Params is a resolved snapshot of every control parameter.
type Params struct {
	BlockSize  int
	Speed      Speed
	Pattern    int
	Brightness uint8
}

// DefaultParams returns the bucket 0 entry of every table.
func DefaultParams() Params {
	return Params{
		BlockSize:  BlockSizeFor(0),
		Speed:      SpeedFor(0),
		Pattern:    PatternFor(0),
		Brightness: BrightnessFor(0),
	}
}

// Sample reads every parameter from s.
func Sample(s Sampler) Params {
	return Params{
		BlockSize:  s.BlockSize(),
		Speed:      s.Speed(),
		Pattern:    s.Pattern(),
		Brightness: s.Brightness(),
	}
}

// Channels assigns an ADC channel to each parameter.
type Channels struct {
	BlockSize  uint8
	Speed      uint8
	Pattern    uint8
	Brightness uint8
}

// Knob samples parameters from potentiometers on an ADC. The zero Channels
// value reads everything from channel 0, a single knob.
type Knob struct {
	adc      scanvideo.ADC
	channels Channels
}

// NewKnob returns a Knob reading adc.
func NewKnob(adc scanvideo.ADC, channels Channels) *Knob {
	return &Knob{adc: adc, channels: channels}
}

func (k *Knob) read(channel uint8, buckets int) int {
	k.adc.SelectChannel(channel)
	return Bucket(k.adc.Read(), buckets)
}

// BlockSize implements Sampler.
func (k *Knob) BlockSize() int { return BlockSizeFor(k.read(k.channels.BlockSize, BlockSizeBuckets)) }

// Speed implements Sampler.
func (k *Knob) Speed() Speed { return SpeedFor(k.read(k.channels.Speed, SpeedBuckets)) }

// Pattern implements Sampler.
func (k *Knob) Pattern() int { return PatternFor(k.read(k.channels.Pattern, PatternBuckets)) }

// Brightness implements Sampler.
func (k *Knob) Brightness() uint8 {
	return BrightnessFor(k.read(k.channels.Brightness, BrightnessBuckets))
}

// Static returns a Sampler with constant parameters, for builds that select
// everything at compile time.
func Static(p Params) Sampler { return static{p: p} }

type static struct{ p Params }

func (s static) BlockSize() int   { return s.p.BlockSize }
func (s static) Speed() Speed     { return s.p.Speed }
func (s static) Pattern() int     { return s.p.Pattern }
func (s static) Brightness() uint8 { return s.p.Brightness }

// Fixed is an ADC that always reads the same sample on every channel.
type Fixed uint16

func (Fixed) SelectChannel(uint8) {}
func (f Fixed) Read() uint16      { return uint16(f) }

// Dial is an ADC whose per-channel samples can be changed at any time, from
// any goroutine. It stands in for potentiometers on hosts.
type Dial struct {
	selected uint32
	values   [4]atomic.Uint32
}

// NewDial returns a Dial with every channel reading raw.
func NewDial(raw uint16) *Dial {
	d := &Dial{}
	for i := range d.values {
		d.values[i].Store(uint32(raw))
	}
	return d
}

// Set changes the sample read on channel. Channels beyond 3 are ignored.
func (d *Dial) Set(channel uint8, raw uint16) {
	if int(channel) < len(d.values) {
		d.values[channel].Store(uint32(raw))
	}
}

// SelectChannel implements scanvideo.ADC. Only the sampling goroutine may
// select channels.
func (d *Dial) SelectChannel(channel uint8) {
	d.selected = uint32(channel) % uint32(len(d.values))
}

// Read implements scanvideo.ADC.
func (d *Dial) Read() uint16 { return uint16(d.values[d.selected].Load()) }
