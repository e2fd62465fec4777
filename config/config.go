// Package config loads the immutable scheduler configuration from defaults, an optional
// TOML file and CELLPAINT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/cellpaint/logging"
	"github.com/lixenwraith/cellpaint/render"
)

// Rate and merge gap bounds enforced by Validate
const (
	MinRate     = 1
	MaxRate     = 1000
	MaxMergeGap = 16
)

// Color mode spellings
const (
	ColorAuto      = "auto"
	ColorTrueColor = "truecolor"
	Color256       = "256"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "CELLPAINT_CONFIG"

// Config is loaded once and passed by value; nothing mutates it afterwards
type Config struct {
	FPS           int    `toml:"fps"`
	TPS           int    `toml:"tps"`
	ScrubInterval int    `toml:"scrub_interval"` // Frames between forced full repaints, 0 disables
	MergeGap      int    `toml:"merge_gap"`
	Mouse         bool   `toml:"mouse"`
	Focus         bool   `toml:"focus"`
	Overlay       bool   `toml:"overlay"`
	OverlayFg     string `toml:"overlay_fg"` // Healthy overlay color, blended toward red under load
	OverlayBg     string `toml:"overlay_bg"`
	Color         string `toml:"color"`
	AmbiguousWide bool   `toml:"ambiguous_wide"`

	CaptureFile string `toml:"capture_file"`
	LogFile     string `toml:"log_file"`
	LogLevel    string `toml:"log_level"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		FPS:           60,
		TPS:           30,
		ScrubInterval: 30,
		MergeGap:      render.DefaultMergeGap,
		Mouse:         true,
		Focus:         true,
		Color:         ColorAuto,
		LogLevel:      "info",
	}
}

// Load builds the configuration: defaults, then the TOML file at path (or $CELLPAINT_CONFIG
// when path is empty), then environment overrides, then validation
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := LoadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes a TOML file over cfg; keys absent from the file keep their value
// Unknown keys are rejected
func LoadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables read through lookup
// A malformed value is an error, never ignored
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	intVar := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", name, v))
				return
			}
			*dst = n
		}
	}
	boolVar := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a boolean", name, v))
				return
			}
			*dst = b
		}
	}
	stringVar := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	intVar("CELLPAINT_FPS", &cfg.FPS)
	intVar("CELLPAINT_TPS", &cfg.TPS)
	intVar("CELLPAINT_SCRUB", &cfg.ScrubInterval)
	intVar("CELLPAINT_MERGE_GAP", &cfg.MergeGap)
	boolVar("CELLPAINT_MOUSE", &cfg.Mouse)
	boolVar("CELLPAINT_FOCUS", &cfg.Focus)
	boolVar("CELLPAINT_OVERLAY", &cfg.Overlay)
	boolVar("CELLPAINT_AMBIGUOUS_WIDE", &cfg.AmbiguousWide)
	stringVar("CELLPAINT_COLOR", &cfg.Color)
	stringVar("CELLPAINT_OVERLAY_FG", &cfg.OverlayFg)
	stringVar("CELLPAINT_OVERLAY_BG", &cfg.OverlayBg)
	stringVar("CELLPAINT_CAPTURE", &cfg.CaptureFile)
	stringVar("CELLPAINT_LOG", &cfg.LogFile)
	stringVar("CELLPAINT_LOG_LEVEL", &cfg.LogLevel)

	return errors.Join(errs...)
}

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every validation failure
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate clamps rates and merge gap into range and rejects values that cannot be clamped
func (c *Config) Validate() error {
	var errs ValidateErrors

	c.FPS = min(max(c.FPS, MinRate), MaxRate)
	c.TPS = min(max(c.TPS, MinRate), MaxRate)
	c.MergeGap = min(max(c.MergeGap, 0), MaxMergeGap)

	if c.ScrubInterval < 0 {
		errs = append(errs, ValidationError{
			Field:   "scrub_interval",
			Message: fmt.Sprintf("must be >= 0, got %d", c.ScrubInterval),
		})
	}

	c.Color = strings.ToLower(c.Color)
	switch c.Color {
	case ColorAuto, ColorTrueColor, Color256:
	case "":
		c.Color = ColorAuto
	default:
		errs = append(errs, ValidationError{
			Field:   "color",
			Message: fmt.Sprintf("invalid mode %q, must be one of: auto, truecolor, 256", c.Color),
		})
	}

	for _, oc := range []struct{ field, value string }{
		{"overlay_fg", c.OverlayFg},
		{"overlay_bg", c.OverlayBg},
	} {
		if _, ok := render.ParseColor(oc.value); !ok {
			errs = append(errs, ValidationError{
				Field:   oc.field,
				Message: fmt.Sprintf("unknown color %q", oc.value),
			})
		}
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: err.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FrameInterval is the paint loop period
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(max(c.FPS, MinRate))
}

// TickInterval is the interaction loop period
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(max(c.TPS, MinRate))
}

// ColorMode resolves the configured color mode, detecting it from the environment for auto
func (c Config) ColorMode() render.ColorMode {
	switch c.Color {
	case ColorTrueColor:
		return render.ColorModeTrueColor
	case Color256:
		return render.ColorMode256
	default:
		return render.DetectColorMode()
	}
}

// OverlayColors returns the parsed overlay colors, default where unset
func (c Config) OverlayColors() (fg, bg render.Color) {
	fg, _ = render.ParseColor(c.OverlayFg)
	bg, _ = render.ParseColor(c.OverlayBg)
	return fg, bg
}
