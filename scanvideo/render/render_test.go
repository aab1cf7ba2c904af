package render

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/composable"
	"github.com/tinygo-org/scanvideo/scanvideo/control"
	"github.com/tinygo-org/scanvideo/scanvideo/pattern"
	"github.com/tinygo-org/scanvideo/scanvideo/soft"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAnimationIdempotent(t *testing.T) {
	a := NewAnimation()
	assert.Equal(t, 0, a.Offset)

	assert.False(t, a.AdvanceIfFrameBoundary(0), "frame 0 is seeded")
	assert.True(t, a.AdvanceIfFrameBoundary(1))
	assert.Equal(t, 2, a.Offset)

	assert.False(t, a.AdvanceIfFrameBoundary(1))
	assert.False(t, a.AdvanceIfFrameBoundary(0), "older frame")
	assert.Equal(t, 2, a.Offset)
	assert.Equal(t, uint16(1), a.LastFrame())
}

func TestAnimationFramesPerAdvance(t *testing.T) {
	a := NewAnimation()
	a.SetSpeed(control.SpeedFor(4)) // +1 every 4 frames

	for f := uint16(1); f <= 3; f++ {
		a.AdvanceIfFrameBoundary(f)
		assert.Equal(t, 0, a.Offset, "frame %d", f)
	}
	a.AdvanceIfFrameBoundary(4)
	assert.Equal(t, 1, a.Offset)

	a.FramesPerAdvance = 0
	a.AdvanceIfFrameBoundary(5)
	assert.Equal(t, 2, a.Offset, "values below 1 advance every frame")
}

func TestAnimationFrameWrap(t *testing.T) {
	a := NewAnimation()
	a.SetSpeed(control.Speed{FramesPerAdvance: 1, Increment: 1})
	require.True(t, a.AdvanceIfFrameBoundary(0x7fff))
	require.True(t, a.AdvanceIfFrameBoundary(0xfffe))
	assert.True(t, a.AdvanceIfFrameBoundary(0), "0 follows 0xfffe")
	assert.Equal(t, 3, a.Offset)
}

func TestAnimationBoundReset(t *testing.T) {
	a := NewAnimation()
	a.Bound = 53
	a.Offset = 53
	a.SetSpeed(control.Speed{FramesPerAdvance: 1, Increment: 1})
	a.AdvanceIfFrameBoundary(1)
	assert.Equal(t, 0, a.Offset)

	a.Offset = -53
	a.Increment = -1
	a.AdvanceIfFrameBoundary(2)
	assert.Equal(t, 0, a.Offset)
}

// TestPropertyAnimation verifies a repeated frame never changes the offset
// and the offset stays within its bound.
func TestPropertyAnimation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := NewAnimation()
		a.Bound = rapid.IntRange(0, 9000).Draw(t, "bound")
		a.SetSpeed(control.SpeedFor(rapid.IntRange(0, 4).Draw(t, "speed")))
		frames := rapid.SliceOfN(rapid.Uint16(), 1, 64).Draw(t, "frames")

		for _, f := range frames {
			a.AdvanceIfFrameBoundary(f)
			offset, seen := a.Offset, a.framesSeen
			if a.AdvanceIfFrameBoundary(f) {
				t.Fatalf("frame %d counted twice", f)
			}
			if a.Offset != offset || a.framesSeen != seen {
				t.Fatalf("repeat of frame %d changed state", f)
			}
			if a.Offset > a.Bound || a.Offset < -a.Bound {
				t.Fatalf("offset %d outside bound %d", a.Offset, a.Bound)
			}
		}
	})
}

// bufferAt returns an empty buffer stamped for frame and row of mode.
func bufferAt(mode scanvideo.Mode, frame, row uint16) *scanvideo.ScanlineBuffer {
	buf := scanvideo.NewScanlineBuffer(scanvideo.MaxScanlineWords(mode))
	buf.ScanlineID = scanvideo.ScanlineID(frame, row)
	return buf
}

func TestRendererMovingBoxWraps(t *testing.T) {
	mode := scanvideo.VGA320x240_60
	p := control.DefaultParams()
	p.Speed = control.Speed{FramesPerAdvance: 1, Increment: 1}
	r := New(nil, mode, WithSampler(control.Static(p)), WithPattern(pattern.KindMovingBox))

	r.Render(bufferAt(mode, 0, 0))
	assert.Equal(t, 53, r.Animation().Bound)

	r.Animation().Offset = 53
	buf := bufferAt(mode, 1, 120)
	r.Render(buf)
	assert.Equal(t, 0, r.Animation().Offset)

	line, err := composable.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 104, line.Runs[0].Length, "box back at the left edge")
	assert.Equal(t, Stats{Scanlines: 2, Frames: 1}, r.Stats())
}

func TestRendererFollowsPatternKnob(t *testing.T) {
	mode := scanvideo.VGA160x120_60
	dial := control.NewDial(0)
	r := New(nil, mode, WithSampler(control.NewKnob(dial, control.Channels{Pattern: 2})))

	buf := bufferAt(mode, 0, 0)
	r.Render(buf)
	line, err := composable.Decode(buf)
	require.NoError(t, err)
	assert.Len(t, line.Runs, 32, "color bars")

	dial.Set(2, 2048) // bucket 2: sine sweep
	buf = bufferAt(mode, 0, 0)
	r.Render(buf)
	line, err = composable.Decode(buf)
	require.NoError(t, err)
	assert.Len(t, line.Runs, 1)
	assert.Equal(t, scanvideo.RGB5(31, 0, 31), line.Runs[0].Color)
}

func TestRunNotSetup(t *testing.T) {
	r := New(soft.New(), scanvideo.VGA320x240_60)
	err := r.Run(context.Background())
	assert.ErrorIs(t, err, scanvideo.ErrNotSetup)
}

func TestLaunchSetupError(t *testing.T) {
	e := soft.New()
	defer e.Close()

	_, err := Launch(context.Background(), e, scanvideo.Mode{Name: "broken"})
	assert.ErrorIs(t, err, scanvideo.ErrInvalidMode)
}

func TestLaunchRendersFrames(t *testing.T) {
	mode := scanvideo.VGA320x240_60
	var lines, bad atomic.Uint64
	e := soft.New(soft.WithBuffers(4), soft.WithSink(soft.SinkFunc(func(buf *scanvideo.ScanlineBuffer) {
		line, err := composable.Decode(buf)
		if err != nil || line.Width() != int(mode.Width) {
			bad.Add(1)
		}
		lines.Add(1)
	})))
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r, err := Launch(ctx, e, mode, WithSampler(control.NewKnob(control.NewDial(3000), control.Channels{})))
	require.NoError(t, err)

	_, err = Launch(ctx, e, mode)
	require.ErrorIs(t, err, scanvideo.ErrAlreadySetup)

	require.Eventually(t, func() bool { return e.Stats().Frames >= 3 }, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, r.Wait())

	assert.Zero(t, bad.Load())
	assert.GreaterOrEqual(t, lines.Load(), uint64(3*mode.Height))
	assert.GreaterOrEqual(t, r.Stats().Frames, uint64(2))
}

func TestRendererBoundFollowsPatternChange(t *testing.T) {
	mode := scanvideo.VGA320x240_60
	dial := control.NewDial(0)
	r := New(nil, mode, WithSampler(control.NewKnob(dial, control.Channels{Pattern: 2})))

	r.Render(bufferAt(mode, 0, 0))
	assert.Equal(t, pattern.DefaultOffsetBound, r.Animation().Bound)

	dial.Set(2, 3500) // bucket 3: moving box
	r.Render(bufferAt(mode, 1, 0))
	assert.Equal(t, 53, r.Animation().Bound, "bound of the pattern drawn on the new frame")
}

// gatedEngine holds Setup until release is closed.
type gatedEngine struct {
	entered chan struct{}
	release chan struct{}
	timing  atomic.Bool
}

func newGatedEngine() *gatedEngine {
	return &gatedEngine{entered: make(chan struct{}), release: make(chan struct{})}
}

func (e *gatedEngine) Setup(scanvideo.Mode) error {
	close(e.entered)
	<-e.release
	return nil
}

func (e *gatedEngine) SetTimingEnabled(enabled bool) { e.timing.Store(enabled) }

func (e *gatedEngine) BeginScanlineGeneration(ctx context.Context) (*scanvideo.ScanlineBuffer, error) {
	if !e.timing.Load() {
		return nil, scanvideo.ErrTimingDisabled
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (e *gatedEngine) EndScanlineGeneration(*scanvideo.ScanlineBuffer) {}

type launched struct {
	r   *Renderer
	err error
}

func launchAsync(ctx context.Context, e scanvideo.Engine) <-chan launched {
	done := make(chan launched, 1)
	go func() {
		r, err := Launch(ctx, e, scanvideo.VGA160x120_60)
		done <- launched{r, err}
	}()
	return done
}

func TestLaunchWaitsForSetup(t *testing.T) {
	e := newGatedEngine()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := launchAsync(ctx, e)
	select {
	case <-e.entered:
	case <-time.After(time.Second):
		t.Fatal("Setup not called")
	}

	select {
	case <-done:
		t.Fatal("Launch returned while Setup was running")
	case <-time.After(20 * time.Millisecond):
	}
	assert.False(t, e.timing.Load())

	close(e.release)
	var res launched
	select {
	case res = <-done:
	case <-time.After(time.Second):
		t.Fatal("Launch still blocked after Setup returned")
	}
	require.NoError(t, res.err)
	assert.True(t, e.timing.Load(), "timing enabled before Launch returns")

	cancel()
	require.NoError(t, res.r.Wait())
}

func TestLaunchCancelledDuringSetup(t *testing.T) {
	e := newGatedEngine()
	ctx, cancel := context.WithCancel(context.Background())

	done := launchAsync(ctx, e)
	<-e.entered
	cancel()
	close(e.release)

	select {
	case res := <-done:
		assert.ErrorIs(t, res.err, context.Canceled)
		assert.Nil(t, res.r)
	case <-time.After(time.Second):
		t.Fatal("Launch still blocked after cancellation")
	}
	assert.False(t, e.timing.Load(), "timing left disabled")
}
