package shadow

import "math"

// InvertY converts a storage-order row to a coordinate measured upward from
// the bottom edge of an image of the given height: height-1 maps to 1 and
// 0 maps to height.
func InvertY(y, height int) int {
	return -(y - height)
}

// Projector maps shadow pixels back onto the source image.
//
// The shadow plane is anchored at the bottom edge of the source. A shadow
// pixel ih rows above the bottom samples the source ih/tan(angle) columns to
// its left and ih*90/depthAngle rows above the bottom.
type Projector struct {
	src    *Surface
	factor float64
	tan    float64 // tan(angle), 0 when the shadow falls straight back
	depth  float64 // depth angle in degrees
}

// NewProjector captures cfg for sampling src. cfg must be valid.
func NewProjector(src *Surface, cfg Config) *Projector {
	return &Projector{
		src:    src,
		factor: cfg.ShadowFactor(),
		tan:    shearTangent(cfg.Angle),
		depth:  float64(cfg.DepthAngle),
	}
}

// shearTangent returns tan(angle) for the horizontal shear. math.Tan(pi/2)
// is finite, so 90 degrees is pinned to 0, meaning no shear at all.
func shearTangent(angle int) float64 {
	if angle == 90 {
		return 0
	}
	return math.Tan(degreesToRadians(float64(angle)))
}

func degreesToRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// SourcePoint returns the source pixel that casts the shadow at
// (shadowX, shadowY). The result may lie outside the source.
func (p *Projector) SourcePoint(shadowX, shadowY int) (x, y int) {
	h := p.src.Height
	ih := InvertY(shadowY, h)
	x = shadowX
	if p.tan != 0 {
		x = int(float64(shadowX) - float64(ih)/p.tan)
	}
	y = InvertY(int(float64(ih)*90/p.depth), h)
	return x, y
}

// Alpha returns the unblurred shadow alpha at (shadowX, shadowY).
// The shadow's color channels are always black.
func (p *Projector) Alpha(shadowX, shadowY int) uint8 {
	x, y := p.SourcePoint(shadowX, shadowY)
	if !p.src.Contains(x, y) {
		return 0
	}
	return uint8(float64(p.src.alpha(x, y)) * p.factor)
}
