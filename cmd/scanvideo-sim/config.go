package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/tinygo-org/scanvideo/scanvideo"
	"github.com/tinygo-org/scanvideo/scanvideo/pattern"
)

// Config is the simulator configuration file.
type Config struct {
	// Mode is a scanvideo mode name, e.g. vga_320x240_60.
	Mode string `toml:"mode" validate:"required,mode"`
	// Pattern fixes the pattern. Empty lets the knob select it.
	Pattern string `toml:"pattern" validate:"omitempty,pattern"`
	// SineGreen is the fixed green level of a forced sine sweep, 0x1f for
	// the bright variant.
	SineGreen uint8 `toml:"sine_green" validate:"lte=31"`
	// Knob is the raw 12-bit sample every control channel reads.
	Knob uint16 `toml:"knob" validate:"lte=4095"`
	// Buffers is the engine's scanline buffer pool size.
	Buffers int `toml:"buffers" validate:"gte=1,lte=64"`
	// Paced scans out at the mode's line rate instead of as fast as
	// possible.
	Paced bool `toml:"paced"`
	// Frames is the number of frames written before stopping.
	Frames int `toml:"frames" validate:"gte=1"`
	// Scale writes frames at the signal resolution instead of the mode's.
	Scale bool `toml:"scale"`
}

// DefaultConfig is used for anything the configuration file leaves out.
func DefaultConfig() Config {
	return Config{
		Mode:    scanvideo.VGA320x240_60.Name,
		Buffers: 8,
		Frames:  4,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		_, err := scanvideo.ModeByName(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("pattern", func(fl validator.FieldLevel) bool {
		_, err := pattern.ParseKind(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads a TOML configuration file over the defaults. An empty
// path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
