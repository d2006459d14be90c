package bake

import (
	"fmt"
	"path/filepath"
)

// Config is supplied by the caller and does not change during a run.
type Config struct {
	Width          int
	Height         int
	OutputFolder   string
	Samples        int
	SmartUVProject bool

	// Margin extends baked texels past island borders, in pixels.
	Margin int
	// AODistance is the maximum occluder distance for the AO pass.
	AODistance float32
}

// Smart UV Project and Pack Islands parameters.
const (
	SmartProjectIslandMargin = 0.01
	PackIslandsMargin        = 0.001
)

func (c Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Samples <= 0 {
		return fmt.Errorf("%w: samples %d", ErrInvalidConfig, c.Samples)
	}
	if c.Margin < 0 {
		return fmt.Errorf("%w: margin %d", ErrInvalidConfig, c.Margin)
	}
	return nil
}

// Image name and file suffixes.
const (
	bakePrefix    = "_bake"
	diffuseSuffix = "_diffuse"
	roughSuffix   = "_rough"
	aoSuffix      = "_ao"
	uvSuffix      = "_uv"
	fileExtension = ".png"
)

// ImageNames are the registry names of the three bake images.
type ImageNames struct {
	Diffuse   string
	Roughness string
	AO        string
}

// NamesFor returns the registry image names for an object.
func NamesFor(object string) ImageNames {
	return ImageNames{
		Diffuse:   object + bakePrefix + diffuseSuffix,
		Roughness: object + bakePrefix + roughSuffix,
		AO:        object + bakePrefix + aoSuffix,
	}
}

// Outputs are the four files a run writes.
type Outputs struct {
	Diffuse   string `yaml:"diffuse"`
	Roughness string `yaml:"roughness"`
	AO        string `yaml:"ao"`
	UV        string `yaml:"uv"`
}

// OutputsFor returns the output file paths for an object.
func OutputsFor(folder, object string) Outputs {
	names := NamesFor(object)
	return Outputs{
		Diffuse:   filepath.Join(folder, names.Diffuse+fileExtension),
		Roughness: filepath.Join(folder, names.Roughness+fileExtension),
		AO:        filepath.Join(folder, names.AO+fileExtension),
		UV:        filepath.Join(folder, object+bakePrefix+uvSuffix+fileExtension),
	}
}

// All returns the output paths in write order.
func (o Outputs) All() []string {
	return []string{o.Roughness, o.Diffuse, o.AO, o.UV}
}
