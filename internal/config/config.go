package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"shadowcast/internal/imageio"
	"shadowcast/internal/shadow"
	"shadowcast/internal/tiles"
)

// Config holds the paths and settings of one CLI run.
type Config struct {
	// Paths
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`

	// Shadow settings. Pointers distinguish "not set" from a valid zero.
	Opacity      *int  `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Angle        int   `json:"angle" yaml:"angle"`
	DepthAngle   int   `json:"depth_angle" yaml:"depth_angle"`
	Diffusion    *int  `json:"diffusion,omitempty" yaml:"diffusion,omitempty"`
	KeepOriginal *bool `json:"keep_original,omitempty" yaml:"keep_original,omitempty"`

	// Render settings
	Workers     int    `json:"workers" yaml:"workers"`
	BandHeight  int    `json:"band_height" yaml:"band_height"`
	JPEGQuality int    `json:"jpeg_quality" yaml:"jpeg_quality"`
	OutputExt   string `json:"output_ext" yaml:"output_ext"` // batch mode only
}

// Load reads a JSON or YAML config file, picked by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Nil pointers and zero values mean "not given on the command line".
type Flags struct {
	Input        string
	Output       string
	Opacity      *int
	Angle        int
	DepthAngle   int
	Diffusion    *int
	KeepOriginal *bool
	Workers      int
	BandHeight   int
	JPEGQuality  int
}

// Resolve applies CLI overrides and fills unset fields with defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Opacity != nil {
		c.Opacity = flags.Opacity
	}
	if flags.Angle != 0 {
		c.Angle = flags.Angle
	}
	if flags.DepthAngle != 0 {
		c.DepthAngle = flags.DepthAngle
	}
	if flags.Diffusion != nil {
		c.Diffusion = flags.Diffusion
	}
	if flags.KeepOriginal != nil {
		c.KeepOriginal = flags.KeepOriginal
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.BandHeight > 0 {
		c.BandHeight = flags.BandHeight
	}
	if flags.JPEGQuality > 0 {
		c.JPEGQuality = flags.JPEGQuality
	}

	// Defaults
	def := shadow.DefaultConfig()
	if c.Opacity == nil {
		c.Opacity = &def.Opacity
	}
	if c.Angle == 0 {
		c.Angle = def.Angle
	}
	if c.DepthAngle == 0 {
		c.DepthAngle = def.DepthAngle
	}
	if c.Diffusion == nil {
		c.Diffusion = &def.DiffusionFactor
	}
	if c.KeepOriginal == nil {
		c.KeepOriginal = &def.KeepOriginalImage
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.BandHeight <= 0 {
		c.BandHeight = tiles.DefaultBandHeight
	}
	if c.JPEGQuality <= 0 {
		c.JPEGQuality = imageio.DefaultJPEGQuality
	}
	if c.OutputExt == "" {
		c.OutputExt = ".webp"
	} else if !strings.HasPrefix(c.OutputExt, ".") {
		c.OutputExt = "." + c.OutputExt
	}
}

// Shadow returns the core configuration. Call Resolve first.
func (c *Config) Shadow() shadow.Config {
	return shadow.Config{
		Opacity:           *c.Opacity,
		Angle:             c.Angle,
		DepthAngle:        c.DepthAngle,
		DiffusionFactor:   *c.Diffusion,
		KeepOriginalImage: *c.KeepOriginal,
	}
}

// Tiles returns the render pass options.
func (c *Config) Tiles() tiles.Options {
	return tiles.Options{Workers: c.Workers, BandHeight: c.BandHeight}
}
