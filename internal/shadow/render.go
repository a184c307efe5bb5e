package shadow

import (
	"context"
	"image"
)

// Renderer draws the blurred shadow of one source surface.
//
// A Renderer holds no mutable state, so RenderRegion may be called from
// several goroutines at once as long as their rectangles do not overlap.
// The destination must not share pixel memory with the source: rows are
// sampled well outside the rectangle being written.
type Renderer struct {
	cfg  Config
	src  *Surface
	proj *Projector
}

// NewRenderer validates cfg and captures it for the whole render pass.
func NewRenderer(src *Surface, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	Logger().Debug("shadow: render pass",
		"width", src.Width,
		"height", src.Height,
		"opacity", cfg.Opacity,
		"angle", cfg.Angle,
		"depth_angle", cfg.DepthAngle,
		"diffusion", cfg.DiffusionFactor,
		"keep_original", cfg.KeepOriginalImage,
	)
	return &Renderer{cfg: cfg, src: src, proj: NewProjector(src, cfg)}, nil
}

// Config returns the configuration captured by NewRenderer.
func (r *Renderer) Config() Config {
	return r.cfg
}

// RenderRegion validates cfg and renders rect of dst from src.
func RenderRegion(dst, src *Surface, rect image.Rectangle, cfg Config) error {
	r, err := NewRenderer(src, cfg)
	if err != nil {
		return err
	}
	r.RenderRegion(dst, rect)
	return nil
}

// Render renders each rectangle in order. Cancellation is only observed
// between rectangles.
func (r *Renderer) Render(ctx context.Context, dst *Surface, rects []image.Rectangle) error {
	for _, rect := range rects {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.RenderRegion(dst, rect)
	}
	return nil
}

// RenderRegion writes every pixel of rect in dst and nothing outside it.
// rect is clipped to dst; an empty rect is a no-op.
func (r *Renderer) RenderRegion(dst *Surface, rect image.Rectangle) {
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		r.renderRow(dst, y, rect.Min.X, rect.Max.X)
	}
}

// renderRow writes dst[left:right] of row y strictly left to right.
func (r *Renderer) renderRow(dst *Surface, y, left, right int) {
	win := newWindow(r.proj, BuildRow(r.cfg.BlurRadius(y, r.src.Height)), y)

	// The seeded column is always written as bare shadow, even when the
	// original image is kept.
	dst.Set(left, y, shadowPixel(win.seed(left)))

	for x := left + 1; x < right; x++ {
		c := shadowPixel(win.advance(x))
		if r.cfg.KeepOriginalImage && r.src.Contains(x, y) {
			c = BlendOver(c, r.src.At(x, y))
		}
		dst.Set(x, y, c)
	}
}

// shadowPixel normalises the weighted alpha sum. The division truncates.
func shadowPixel(aSum, waSum int64) Pixel {
	if waSum == 0 {
		return Pixel{}
	}
	return Pixel{A: uint8(aSum / waSum)}
}

// window is the sliding 2D convolution state of one output row.
// Slot i holds the vertical partial sums of the source column that lines up
// with kernel tap i for the current output column.
type window struct {
	proj   *Projector
	w      []int
	half   int
	y      int
	waSums []int64
	aSums  []int64
}

func newWindow(p *Projector, w []int, y int) *window {
	return &window{
		proj:   p,
		w:      w,
		half:   (len(w) - 1) / 2,
		y:      y,
		waSums: make([]int64, len(w)),
		aSums:  make([]int64, len(w)),
	}
}

// seed fills every slot for output column x.
func (win *window) seed(x int) (aSum, waSum int64) {
	for i := range win.w {
		win.column(i, x+i-win.half)
	}
	return win.sum()
}

// advance moves the window from column x-1 to x. Only the rightmost slot is
// sampled; the others shift left by one.
func (win *window) advance(x int) (aSum, waSum int64) {
	last := len(win.w) - 1
	copy(win.waSums, win.waSums[1:])
	copy(win.aSums, win.aSums[1:])
	win.column(last, x+last-win.half)
	return win.sum()
}

// column samples source column srcX into slot i. Taps that fall outside
// the source contribute neither weight nor alpha.
func (win *window) column(i, srcX int) {
	win.waSums[i] = 0
	win.aSums[i] = 0

	src := win.proj.src
	if srcX < 0 || srcX >= src.Width {
		return
	}
	for wy, wp := range win.w {
		srcY := win.y + wy - win.half
		if srcY < 0 || srcY >= src.Height {
			continue
		}
		a := win.proj.Alpha(srcX, srcY)
		win.waSums[i] += int64(wp)
		win.aSums[i] += int64(wp) * int64(a)
	}
}

func (win *window) sum() (aSum, waSum int64) {
	for i, ww := range win.w {
		waSum += int64(ww) * win.waSums[i]
		aSum += int64(ww) * win.aSums[i]
	}
	return aSum, waSum
}
