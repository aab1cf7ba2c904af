package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/control"
	"github.com/tinygo-org/scanvideo/scanvideo/display"
	"github.com/tinygo-org/scanvideo/scanvideo/pattern"
	"github.com/tinygo-org/scanvideo/scanvideo/render"
	"github.com/tinygo-org/scanvideo/scanvideo/soft"
)

// Result summarizes a simulation run.
type Result struct {
	Render  render.Stats
	Engine  soft.Stats
	Written int
}

// simulate renders cfg.Frames frames of cfg into outDir as PNG files.
func simulate(ctx context.Context, cfg Config, outDir string, log zerolog.Logger) (Result, error) {
	var res Result
	mode, err := scanvideo.ModeByName(cfg.Mode)
	if err != nil {
		return res, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("create output directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, h := int(mode.Width), int(mode.Height)
	var sinkOpts []display.Option
	if cfg.Scale {
		w, h = w*int(mode.XScale), h*int(mode.YScale)
		sinkOpts = append(sinkOpts, display.Scaled())
	}
	sinkOpts = append(sinkOpts, display.WithLogger(log))

	errc := make(chan error, 1)
	img := display.NewImage(w, h)
	img.OnFrame = func(frame int, snap *image.RGBA) error {
		if frame >= cfg.Frames {
			return nil
		}
		err := writePNG(filepath.Join(outDir, fmt.Sprintf("frame-%04d.png", frame)), snap)
		if err == nil {
			res.Written++
			log.Debug().Int("frame", frame).Msg("frame written")
		}
		if err != nil || frame == cfg.Frames-1 {
			select {
			case errc <- err:
			default:
			}
			cancel()
		}
		return err
	}

	engineOpts := []soft.Option{
		soft.WithBuffers(cfg.Buffers),
		soft.WithSink(display.NewSink(img, mode, sinkOpts...)),
		soft.WithLogger(log),
	}
	if cfg.Paced {
		engineOpts = append(engineOpts, soft.Paced())
	}
	engine := soft.New(engineOpts...)
	defer engine.Close()

	renderOpts := []render.Option{
		render.WithSampler(control.NewKnob(control.NewDial(cfg.Knob), control.Channels{})),
		render.WithLogger(log),
	}
	if cfg.Pattern != "" {
		kind, err := pattern.ParseKind(cfg.Pattern)
		if err != nil {
			return res, err
		}
		if kind == pattern.KindSineSweep {
			renderOpts = append(renderOpts, render.WithGenerator(pattern.SineSweep{Fixed: cfg.SineGreen}))
		} else {
			renderOpts = append(renderOpts, render.WithPattern(kind))
		}
	}

	r, err := render.Launch(ctx, engine, mode, renderOpts...)
	if err != nil {
		return res, err
	}
	<-ctx.Done()
	if err := r.Wait(); err != nil {
		return res, err
	}
	engine.SetTimingEnabled(false)

	res.Render = r.Stats()
	res.Engine = engine.Stats()
	select {
	case err := <-errc:
		return res, err
	default:
		return res, ctx.Err()
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
