// Package render runs the scanline production loop: it borrows buffers from
// a video-timing engine, fills them with the selected pattern and hands them
// back, advancing the animation once per frame.
package render

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/control"
	"github.com/tinygo-org/scanvideo/scanvideo/pattern"
)

// Stats counts renderer activity.
type Stats struct {
	Scanlines uint64
	Frames    uint64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSampler sets where control parameters come from. The default is the
// bucket 0 parameters.
func WithSampler(s control.Sampler) Option { return func(r *Renderer) { r.sampler = s } }

// WithPattern fixes the pattern, ignoring the sampled pattern selector.
func WithPattern(k pattern.Kind) Option { return WithGenerator(k.Generator()) }

// WithGenerator fixes the generator, ignoring the sampled pattern selector.
func WithGenerator(g pattern.Generator) Option { return func(r *Renderer) { r.forced = g } }

// WithAnimation sets the animation state, for callers that inspect it.
func WithAnimation(a *Animation) Option { return func(r *Renderer) { r.anim = a } }

// WithLogger sets the renderer logger.
func WithLogger(l zerolog.Logger) Option { return func(r *Renderer) { r.log = l } }

// Renderer produces the scanlines of one mode on one engine. All of its
// state is owned by the goroutine calling Run.
type Renderer struct {
	engine  scanvideo.Engine
	mode    scanvideo.Mode
	geom    pattern.Geometry
	sampler control.Sampler
	anim    *Animation
	forced  pattern.Generator
	log     zerolog.Logger

	line    pattern.Line
	params  control.Params
	gen     pattern.Generator
	code    int
	frame   uint16
	started bool

	scanlines atomic.Uint64
	frames    atomic.Uint64

	group *errgroup.Group
}

// New returns a renderer for an engine that is already set up for mode.
func New(engine scanvideo.Engine, mode scanvideo.Mode, opts ...Option) *Renderer {
	r := &Renderer{
		engine:  engine,
		mode:    mode,
		geom:    pattern.GeometryOf(mode),
		sampler: control.Static(control.DefaultParams()),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.anim == nil {
		r.anim = NewAnimation()
	}
	r.params = control.DefaultParams()
	r.code = r.params.Pattern
	r.gen = r.forced
	if r.gen == nil {
		r.gen = pattern.Select(r.code)
	}
	return r
}

// Run produces scanlines until ctx is cancelled or the engine fails. It
// returns nil when stopped by cancellation or by the engine closing.
func (r *Renderer) Run(ctx context.Context) error {
	r.log.Debug().Str("mode", r.mode.Name).Msg("scanline loop started")
	defer func() {
		r.log.Debug().
			Uint64("scanlines", r.scanlines.Load()).
			Uint64("frames", r.frames.Load()).
			Msg("scanline loop stopped")
	}()

	for {
		buf, err := r.engine.BeginScanlineGeneration(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, scanvideo.ErrClosed):
			return nil
		case err != nil:
			return fmt.Errorf("begin scanline: %w", err)
		}
		r.Render(buf)
		r.engine.EndScanlineGeneration(buf)
	}
}

// Render fills buf for the scanline its id names. A new frame number
// advances the animation before the line is drawn.
func (r *Renderer) Render(buf *scanvideo.ScanlineBuffer) {
	r.params.Pattern = r.sampler.Pattern()
	r.params.BlockSize = r.sampler.BlockSize()
	r.params.Brightness = r.sampler.Brightness()
	r.selectGenerator()

	frame := buf.FrameNumber()
	if !r.started || frame != r.frame {
		r.started = true
		r.frame = frame
		r.beginFrame(frame)
	}

	r.line.Fill(buf, r.gen, r.geom, int(buf.ScanlineNumber()), r.anim.Offset, r.params)
	r.scanlines.Add(1)
}

func (r *Renderer) beginFrame(frame uint16) {
	r.params.Speed = r.sampler.Speed()
	r.anim.SetSpeed(r.params.Speed)
	r.anim.Bound = r.gen.OffsetBound(r.geom)
	if r.anim.AdvanceIfFrameBoundary(frame) {
		r.frames.Add(1)
	}
}

func (r *Renderer) selectGenerator() {
	if r.forced != nil || r.params.Pattern == r.code {
		return
	}
	r.code = r.params.Pattern
	r.gen = pattern.Select(r.code)
	r.log.Debug().Int("pattern", r.code).Msg("pattern changed")
}

// Animation returns the animation state. It must not be modified while Run
// is active.
func (r *Renderer) Animation() *Animation { return r.anim }

// Stats returns the counters. It is safe to call from any goroutine.
func (r *Renderer) Stats() Stats {
	return Stats{Scanlines: r.scanlines.Load(), Frames: r.frames.Load()}
}

// Launch sets up engine for mode on a new rendering goroutine, enables
// timing and starts the scanline loop there. It returns once setup is done,
// with the setup error if any. The loop stops when ctx is cancelled; Wait
// returns its result.
func Launch(ctx context.Context, engine scanvideo.Engine, mode scanvideo.Mode, opts ...Option) (*Renderer, error) {
	r := New(engine, mode, opts...)

	ready := semaphore.NewWeighted(1)
	if err := ready.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	var setupErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := engine.Setup(mode); err != nil {
			setupErr = fmt.Errorf("setup %s: %w", mode.Name, err)
			ready.Release(1)
			return setupErr
		}
		if gctx.Err() != nil {
			ready.Release(1)
			return nil
		}
		engine.SetTimingEnabled(true)
		ready.Release(1)
		return r.Run(gctx)
	})

	// Blocks until the rendering goroutine releases the signal. A cancelled
	// handoff still waits for Setup to return.
	err := ready.Acquire(ctx, 1)
	if err == nil {
		err = setupErr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = g.Wait()
		return nil, err
	}

	r.log.Info().
		Str("mode", mode.Name).
		Uint16("width", mode.Width).
		Uint16("height", mode.Height).
		Msg("scanline generation started")
	r.group = g
	return r, nil
}

// Wait blocks until a launched loop returns and returns its error.
func (r *Renderer) Wait() error {
	if r.group == nil {
		return nil
	}
	return r.group.Wait()
}
