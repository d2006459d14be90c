// Package config handles texbake configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/pkg/encoding"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all texbake settings.
type Config struct {
	Bake    BakeConfig    `yaml:"bake"`
	Input   InputConfig   `yaml:"input"`
	Render  RenderConfig  `yaml:"render"`
	Sync    SyncConfig    `yaml:"sync"`
	Logging LoggingConfig `yaml:"logging"`
}

// BakeConfig holds the Material Baking settings.
type BakeConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	OutputFolder   string  `yaml:"output_folder"`
	Samples        int     `yaml:"samples"`
	SmartUVProject bool    `yaml:"smart_uv_project"`
	Margin         int     `yaml:"margin"`      // pixels
	AODistance     float32 `yaml:"ao_distance"` // scene units
}

// InputConfig controls how model files are read.
type InputConfig struct {
	Charset string `yaml:"charset"` // code page of non-UTF-8 OBJ/MTL files
}

// RenderConfig selects how bakes and channel packing are executed.
type RenderConfig struct {
	UseGPU  bool   `yaml:"use_gpu"` // pack channels on the GPU; falls back to CPU
	Workers int    `yaml:"workers"` // 0 = one per CPU
	Seed    uint64 `yaml:"seed"`
}

// SyncConfig holds auto-sync settings.
type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
	Manifest bool          `yaml:"manifest"` // write <object>_bake.yaml after each bake
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Bake: BakeConfig{
			Width:          512,
			Height:         512,
			OutputFolder:   os.TempDir(),
			Samples:        10,
			SmartUVProject: false,
			Margin:         16,
			AODistance:     10,
		},
		Input: InputConfig{
			Charset: encoding.DefaultCharset,
		},
		Render: RenderConfig{
			UseGPU: true,
		},
		Sync: SyncConfig{
			Interval: time.Second / 3,
			Manifest: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values a bake cannot run with. The output folder is
// not checked here; the pipeline reports it as a warning.
func (c *Config) Validate() error {
	b := c.Bake
	switch {
	case b.Width <= 0 || b.Height <= 0:
		return fmt.Errorf("%w: bake size %dx%d", ErrInvalid, b.Width, b.Height)
	case b.Samples <= 0:
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalid, b.Samples)
	case b.Margin < 0:
		return fmt.Errorf("%w: margin must not be negative, got %d", ErrInvalid, b.Margin)
	case b.AODistance < 0:
		return fmt.Errorf("%w: ao_distance must not be negative", ErrInvalid)
	case c.Render.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	case c.Sync.Interval <= 0:
		return fmt.Errorf("%w: sync interval must be positive", ErrInvalid)
	}
	if _, err := encoding.Lookup(c.Input.Charset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Pipeline returns the per-run bake configuration.
func (b BakeConfig) Pipeline() bake.Config {
	return bake.Config{
		Width:          b.Width,
		Height:         b.Height,
		OutputFolder:   b.OutputFolder,
		Samples:        b.Samples,
		SmartUVProject: b.SmartUVProject,
		Margin:         b.Margin,
		AODistance:     b.AODistance,
	}
}
