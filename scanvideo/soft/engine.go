// Package soft is a video-timing engine implemented in software. It keeps
// the scanline buffer pool and the FIFO id sequence of a hardware engine
// and scans finished buffers out to a Sink, either paced at the mode's line
// period or as fast as they are produced.
package soft

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/internal/syncutil"
)

// DefaultBuffers is the default size of the buffer pool.
const DefaultBuffers = 8

// Sink receives scanlines in display order. The buffer is only valid for
// the duration of the call.
type Sink interface {
	Scanline(buf *scanvideo.ScanlineBuffer)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(buf *scanvideo.ScanlineBuffer)

func (f SinkFunc) Scanline(buf *scanvideo.ScanlineBuffer) { f(buf) }

// Discard drops every scanline.
var Discard Sink = SinkFunc(func(*scanvideo.ScanlineBuffer) {})

// Stats counts engine activity.
type Stats struct {
	// Scanlines is the number of scanlines delivered to the sink.
	Scanlines uint64
	// Frames is the number of frames whose last scanline was delivered.
	Frames uint64
	// Misses is the number of line periods no buffer was ready for.
	Misses uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithBuffers sets the number of buffers in the pool.
func WithBuffers(n int) Option { return func(e *Engine) { e.buffers = n } }

// WithBufferWords sets the capacity of each buffer in 32-bit words.
func WithBufferWords(n int) Option { return func(e *Engine) { e.words = n } }

// WithClock sets the clock used for pacing.
func WithClock(c clockwork.Clock) Option { return func(e *Engine) { e.clock = c } }

// Paced makes the engine consume one scanline per line period, counting a
// miss whenever none is ready.
func Paced() Option { return func(e *Engine) { e.paced = true } }

// WithSink sets where scanlines go. The default is Discard.
func WithSink(s Sink) Option { return func(e *Engine) { e.sink = s } }

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// Engine implements scanvideo.Engine.
type Engine struct {
	buffers int
	words   int
	clock   clockwork.Clock
	paced   bool
	sink    Sink
	log     zerolog.Logger

	mu     syncutil.Mutex
	mode   scanvideo.Mode
	free   chan *scanvideo.ScanlineBuffer
	ready  chan *scanvideo.ScanlineBuffer
	closed chan struct{}
	frame  uint16
	row    uint16
	stats  Stats
	stop   context.CancelFunc
	done   chan struct{}
	isDone bool
}

var _ scanvideo.Engine = (*Engine)(nil)

// New returns an engine that still needs Setup.
func New(opts ...Option) *Engine {
	e := &Engine{
		buffers: DefaultBuffers,
		clock:   clockwork.NewRealClock(),
		sink:    Discard,
		log:     zerolog.Nop(),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.buffers < 1 {
		e.buffers = 1
	}
	return e
}

// Setup allocates the buffer pool for mode.
func (e *Engine) Setup(mode scanvideo.Mode) error {
	if !mode.Valid() {
		return scanvideo.ErrInvalidMode
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.isDone {
		return scanvideo.ErrClosed
	}
	if e.free != nil {
		return scanvideo.ErrAlreadySetup
	}

	words := max(e.words, scanvideo.DefaultBufferWords, scanvideo.MaxScanlineWords(mode))
	e.mode = mode
	e.free = make(chan *scanvideo.ScanlineBuffer, e.buffers)
	e.ready = make(chan *scanvideo.ScanlineBuffer, e.buffers)
	for i := 0; i < e.buffers; i++ {
		e.free <- scanvideo.NewScanlineBuffer(words)
	}
	e.log.Debug().
		Str("mode", mode.Name).
		Int("buffers", e.buffers).
		Int("words", words).
		Bool("paced", e.paced).
		Msg("scanvideo engine set up")
	return nil
}

// SetTimingEnabled starts or stops scanning out. It does nothing before
// Setup or after Close.
func (e *Engine) SetTimingEnabled(enabled bool) {
	e.mu.Lock()
	if e.free == nil || e.isDone || enabled == (e.stop != nil) {
		e.mu.Unlock()
		return
	}
	if !enabled {
		e.mu.Unlock()
		e.halt()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.stop = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	e.log.Debug().Msg("scanvideo timing enabled")
	go func() {
		defer close(done)
		e.scan(ctx)
	}()
}

// halt stops the scan goroutine and waits for it.
func (e *Engine) halt() {
	e.mu.Lock()
	stop, done := e.stop, e.done
	e.stop, e.done = nil, nil
	e.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	<-done
	e.log.Debug().Msg("scanvideo timing disabled")
}

// BeginScanlineGeneration implements scanvideo.Engine. Ids are assigned in
// call order: row by row, then frame by frame, wrapping at 16 bits.
func (e *Engine) BeginScanlineGeneration(ctx context.Context) (*scanvideo.ScanlineBuffer, error) {
	e.mu.Lock()
	free := e.free
	e.mu.Unlock()
	if free == nil {
		return nil, scanvideo.ErrNotSetup
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.closed:
		return nil, scanvideo.ErrClosed
	case buf := <-free:
		e.mu.Lock()
		buf.ScanlineID = scanvideo.ScanlineID(e.frame, e.row)
		e.row++
		if e.row >= e.mode.Height {
			e.row = 0
			e.frame++
		}
		e.mu.Unlock()
		buf.Status = scanvideo.StatusFilling
		return buf, nil
	}
}

// EndScanlineGeneration implements scanvideo.Engine.
func (e *Engine) EndScanlineGeneration(buf *scanvideo.ScanlineBuffer) {
	e.mu.Lock()
	ready := e.ready
	e.mu.Unlock()
	if buf == nil || ready == nil {
		return
	}
	select {
	case <-e.closed:
	case ready <- buf:
	}
}

func (e *Engine) scan(ctx context.Context) {
	period := e.mode.LinePeriod()
	if !e.paced || period <= 0 {
		for {
			select {
			case <-ctx.Done():
				return
			case buf := <-e.ready:
				e.deliver(buf)
			}
		}
	}

	ticker := e.clock.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			select {
			case buf := <-e.ready:
				e.deliver(buf)
			default:
				e.mu.Lock()
				e.stats.Misses++
				e.mu.Unlock()
			}
		}
	}
}

func (e *Engine) deliver(buf *scanvideo.ScanlineBuffer) {
	e.sink.Scanline(buf)

	e.mu.Lock()
	e.stats.Scanlines++
	if buf.ScanlineNumber() == e.mode.Height-1 {
		e.stats.Frames++
	}
	e.mu.Unlock()

	buf.Reset()
	e.free <- buf
}

// Stats returns a snapshot of the counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Mode returns the mode passed to Setup.
func (e *Engine) Mode() scanvideo.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// LinePeriod is the pacing interval, zero when free running.
func (e *Engine) LinePeriod() time.Duration {
	if !e.paced {
		return 0
	}
	return e.Mode().LinePeriod()
}

// Close stops scanning out and unblocks pending BeginScanlineGeneration
// calls with scanvideo.ErrClosed.
func (e *Engine) Close() error {
	e.halt()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isDone {
		e.isDone = true
		close(e.closed)
	}
	return nil
}
