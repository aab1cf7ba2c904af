//go:build rp2040 || rp2350

// Package rp2 connects the RP2040 and RP2350 analog inputs to the control
// sampler.
package rp2

import (
	"machine"

	"github.com/tinygo-org/scanvideo/scanvideo"
)

const badChannel = "rp2: ADC channel out of range"

// channelPins maps ADC channels to their pins, GPIO26 to GPIO29.
var channelPins = [...]machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2, machine.ADC3}

// ADC implements scanvideo.ADC over the on-chip converter. Only the
// channels passed to NewADC are configured.
type ADC struct {
	adcs       [len(channelPins)]machine.ADC
	configured uint8
	selected   uint8
}

var _ scanvideo.ADC = (*ADC)(nil)

// NewADC initializes the converter and configures the given channels as
// analog inputs. Channel 0 is selected.
func NewADC(channels ...uint8) *ADC {
	machine.InitADC()
	a := &ADC{}
	for _, ch := range channels {
		if int(ch) >= len(channelPins) {
			panic(badChannel)
		}
		a.adcs[ch] = machine.ADC{Pin: channelPins[ch]}
		a.adcs[ch].Configure(machine.ADCConfig{})
		a.configured |= 1 << ch
	}
	return a
}

// SelectChannel implements scanvideo.ADC.
func (a *ADC) SelectChannel(channel uint8) {
	if int(channel) >= len(channelPins) {
		panic(badChannel)
	}
	a.selected = channel
}

// Read implements scanvideo.ADC. The machine package scales samples to 16
// bits; they are shifted back to the converter's 12. Unconfigured channels
// read 0.
func (a *ADC) Read() uint16 {
	if a.configured&(1<<a.selected) == 0 {
		return 0
	}
	return a.adcs[a.selected].Get() >> 4
}
