package shadow

import (
	"errors"
	"fmt"
)

// MaxOpacity is the opacity that produces a fully black shadow.
const MaxOpacity = 255

// Default property values.
const (
	DefaultOpacity    = 115
	DefaultAngle      = 45
	DefaultDepthAngle = 45
)

// blurRowsScale divided by the diffusion factor gives the number of rows
// over which the blur radius grows by one pixel.
const blurRowsScale = 250

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("shadow: invalid configuration")

// Config holds the tunable parameters of one render pass.
// It is captured once per pass and passed by value; nothing mutates it.
type Config struct {
	// Opacity is the shadow darkness in [0, MaxOpacity].
	Opacity int
	// Angle is the left to right angle of the cast shadow in degrees.
	// 0 is all the way to the right, 90 is straight back, 180 is all the
	// way to the left. Both endpoints are excluded.
	Angle int
	// DepthAngle is the front to back angle of the light in degrees, (0, 90].
	DepthAngle int
	// DiffusionFactor in [0, 100] controls how fast the shadow edge gets
	// fuzzier the farther it is from the source image. 0 disables blur.
	DiffusionFactor int
	// KeepOriginalImage composites the shadow over the source pixels
	// instead of replacing them.
	KeepOriginalImage bool
}

// DefaultConfig returns the configuration the effect starts with.
func DefaultConfig() Config {
	return Config{
		Opacity:    DefaultOpacity,
		Angle:      DefaultAngle,
		DepthAngle: DefaultDepthAngle,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	if c.Opacity < 0 || c.Opacity > MaxOpacity {
		return fmt.Errorf("%w: opacity %d outside [0, %d]", ErrInvalidConfig, c.Opacity, MaxOpacity)
	}
	if c.Angle <= 0 || c.Angle >= 180 {
		return fmt.Errorf("%w: angle %d outside (0, 180)", ErrInvalidConfig, c.Angle)
	}
	if c.DepthAngle <= 0 || c.DepthAngle > 90 {
		return fmt.Errorf("%w: depth angle %d outside (0, 90]", ErrInvalidConfig, c.DepthAngle)
	}
	if c.DiffusionFactor < 0 || c.DiffusionFactor > 100 {
		return fmt.Errorf("%w: diffusion factor %d outside [0, 100]", ErrInvalidConfig, c.DiffusionFactor)
	}
	return nil
}

// ShadowFactor is the opacity normalised to [0, 1].
func (c Config) ShadowFactor() float64 {
	return float64(c.Opacity) / MaxOpacity
}

// RowsPerBlurRadius returns how many rows it takes for the blur radius to
// grow by one. Only defined for a non-zero diffusion factor.
func (c Config) RowsPerBlurRadius() int {
	return blurRowsScale / c.DiffusionFactor
}

// BlurRadius returns the blur radius used for row y of an image of the
// given height. Rows at or below the bottom edge get radius 0.
func (c Config) BlurRadius(y, height int) float64 {
	if c.DiffusionFactor == 0 {
		return 0
	}
	r := float64(InvertY(y, height)) / float64(c.RowsPerBlurRadius())
	if r < 0 {
		return 0
	}
	return r
}
