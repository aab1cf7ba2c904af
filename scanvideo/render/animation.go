package render

import (
	"github.com/tinygo-org/scanvideo/scanvideo/control"
	"github.com/tinygo-org/scanvideo/scanvideo/pattern"
)

// Animation is the offset shared by the animated patterns. It advances by
// Increment every FramesPerAdvance frames and restarts from 0 once it passes
// Bound in either direction.
type Animation struct {
	Offset           int
	Increment        int
	FramesPerAdvance int
	Bound            int

	framesSeen int
	lastFrame  uint16
}

// NewAnimation returns an animation at offset 0 that has seen frame 0 and
// moves at the default speed.
func NewAnimation() *Animation {
	a := &Animation{Bound: pattern.DefaultOffsetBound}
	a.SetSpeed(control.DefaultSpeed())
	return a
}

// SetSpeed changes the animation rate. It takes effect at the next advance.
func (a *Animation) SetSpeed(s control.Speed) {
	a.FramesPerAdvance = s.FramesPerAdvance
	a.Increment = s.Increment
}

// AdvanceIfFrameBoundary counts frame if it is newer than the last frame
// seen and reports whether it was. Frame numbers wrap at 16 bits; a frame
// up to half the range behind the last one is treated as already seen, so
// calling again with the same frame is a no-op.
func (a *Animation) AdvanceIfFrameBoundary(frame uint16) bool {
	if int16(frame-a.lastFrame) <= 0 {
		return false
	}
	a.lastFrame = frame

	a.framesSeen++
	if a.framesSeen >= max(a.FramesPerAdvance, 1) {
		a.Offset += a.Increment
		a.framesSeen = 0
	}
	if a.Offset > a.Bound || a.Offset < -a.Bound {
		a.Offset = 0
	}
	return true
}

// LastFrame returns the most recent frame counted.
func (a *Animation) LastFrame() uint16 { return a.lastFrame }
