// Package config loads the previewer settings from a YAML file layered over defaults.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// Config is the full previewer configuration.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Engine    EngineConfig    `yaml:"engine"`
	Animation AnimationConfig `yaml:"animation"`

	// Texture is an optional PNG/JPEG/BMP/TGA file applied to every model.
	// Empty selects a generated checkerboard.
	Texture string `yaml:"texture"`
}

// WindowConfig configures the preview window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RendererConfig configures the GPU surface.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `yaml:"present_mode"`
	// MSAA is the sample count, 1 or 4.
	MSAA int `yaml:"msaa"`
	// SoftwareFallback forces the CPU fallback adapter.
	SoftwareFallback bool `yaml:"software_fallback"`
}

// EngineConfig configures the frame loop.
type EngineConfig struct {
	// TickRate is the number of animation ticks per second.
	TickRate float64 `yaml:"tick_rate"`
	// MaxTicksPerFrame caps catch-up ticks after a stall.
	MaxTicksPerFrame int `yaml:"max_ticks_per_frame"`
	// Profiling logs frame and upload statistics every ProfileInterval.
	Profiling       bool          `yaml:"profiling"`
	ProfileInterval time.Duration `yaml:"profile_interval"`
}

// AnimationConfig configures motion playback.
type AnimationConfig struct {
	// FramesPerTick is how many motion frames one tick advances. Ignored when FrameDuration is set.
	FramesPerTick int `yaml:"frames_per_tick"`
	// FrameDuration switches motions to time-based stepping when positive.
	FrameDuration time.Duration `yaml:"frame_duration"`
	// BlendMode is "last-writer-wins" or "weighted".
	BlendMode string `yaml:"blend_mode"`
	// TickWorkers ticks models in parallel when greater than 1.
	TickWorkers int `yaml:"tick_workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "C3 Preview",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			MSAA:        4,
		},
		Engine: EngineConfig{
			TickRate:         30,
			MaxTicksPerFrame: 5,
			ProfileInterval:  time.Second,
		},
		Animation: AnimationConfig{
			FramesPerTick: 1,
			BlendMode:     "last-writer-wins",
			TickWorkers:   1,
		},
	}
}

// Load reads a YAML file over Default and validates the result.
// An empty path returns the defaults.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	cfg, err = Parse(data)
	if err != nil {
		return cfg, errors.WithMessagef(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrap(err, "failed to parse")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid field in one error.
func (c Config) Validate() error {
	var problems []string
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, fmt.Sprintf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		problems = append(problems, fmt.Sprintf("renderer.present_mode %q must be vsync or uncapped", c.Renderer.PresentMode))
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		problems = append(problems, fmt.Sprintf("renderer.msaa %d must be 1 or 4", c.Renderer.MSAA))
	}
	if c.Engine.TickRate <= 0 {
		problems = append(problems, fmt.Sprintf("engine.tick_rate %v must be positive", c.Engine.TickRate))
	}
	if c.Engine.MaxTicksPerFrame < 1 {
		problems = append(problems, fmt.Sprintf("engine.max_ticks_per_frame %d must be at least 1", c.Engine.MaxTicksPerFrame))
	}
	if c.Animation.FramesPerTick < 1 {
		problems = append(problems, fmt.Sprintf("animation.frames_per_tick %d must be at least 1", c.Animation.FramesPerTick))
	}
	if c.Animation.FrameDuration < 0 {
		problems = append(problems, fmt.Sprintf("animation.frame_duration %v must not be negative", c.Animation.FrameDuration))
	}
	switch c.Animation.BlendMode {
	case "last-writer-wins", "weighted":
	default:
		problems = append(problems, fmt.Sprintf("animation.blend_mode %q must be last-writer-wins or weighted", c.Animation.BlendMode))
	}
	if c.Animation.TickWorkers < 1 {
		problems = append(problems, fmt.Sprintf("animation.tick_workers %d must be at least 1", c.Animation.TickWorkers))
	}

	if len(problems) > 0 {
		return errors.Wrap(ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
