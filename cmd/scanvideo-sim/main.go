// Command scanvideo-sim runs the scanline generator on the software engine
// and writes the frames it produces as PNG files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string, logOut io.Writer) error {
	flags := flag.NewFlagSet("scanvideo-sim", flag.ContinueOnError)
	configPath := flags.String("config", "", "TOML configuration `file`")
	outDir := flags.String("out", "frames", "output `directory` for PNG frames")
	frames := flags.Int("frames", 0, "number of frames to write, overrides the configuration")
	debug := flags.Bool("debug", false, "enable debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: logOut}).Level(level).With().Timestamp().Logger()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *frames > 0 {
		cfg.Frames = *frames
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("mode", cfg.Mode).
		Str("pattern", cfg.Pattern).
		Uint16("knob", cfg.Knob).
		Int("frames", cfg.Frames).
		Bool("paced", cfg.Paced).
		Msg("starting simulation")

	res, err := simulate(ctx, cfg, *outDir, log)
	if errors.Is(err, context.Canceled) {
		log.Warn().Int("written", res.Written).Msg("interrupted")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().
		Int("written", res.Written).
		Uint64("scanlines", res.Engine.Scanlines).
		Uint64("frames", res.Engine.Frames).
		Uint64("misses", res.Engine.Misses).
		Uint64("rendered", res.Render.Scanlines).
		Str("out", *outDir).
		Msg("simulation finished")
	return nil
}
