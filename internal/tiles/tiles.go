package tiles

import (
	"context"
	"image"
	"runtime"
	"sync"
	"sync/atomic"

	"shadowcast/internal/shadow"
)

// DefaultBandHeight is the number of rows per rectangle when Options
// leaves it unset.
const DefaultBandHeight = 32

// Options controls how a render pass is split up.
type Options struct {
	Workers    int // goroutines; <= 0 means runtime.NumCPU()
	BandHeight int // rows per rectangle; <= 0 means DefaultBandHeight

	// Progress, if set, is called after each finished rectangle with the
	// number of rectangles done so far and the total. It may be called
	// from several goroutines.
	Progress func(done, total int)
}

// Split cuts bounds into full-width horizontal bands of at most
// bandHeight rows. Every band starts at the same left column, so the
// output does not depend on the band height.
func Split(bounds image.Rectangle, bandHeight int) []image.Rectangle {
	if bounds.Empty() {
		return nil
	}
	if bandHeight <= 0 {
		bandHeight = DefaultBandHeight
	}
	rects := make([]image.Rectangle, 0, (bounds.Dy()+bandHeight-1)/bandHeight)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += bandHeight {
		rects = append(rects, image.Rect(bounds.Min.X, y, bounds.Max.X, min(y+bandHeight, bounds.Max.Y)))
	}
	return rects
}

// Render validates cfg once and renders the whole of dst from src, handing
// bands to a pool of workers. A cancelled ctx stops workers from picking up
// new bands; bands already started run to completion.
func Render(ctx context.Context, dst, src *shadow.Surface, cfg shadow.Config, opts Options) error {
	r, err := shadow.NewRenderer(src, cfg)
	if err != nil {
		return err
	}
	return RenderRects(ctx, r, dst, Split(dst.Bounds(), opts.BandHeight), opts)
}

// RenderRects renders rects of dst with r. The rectangles must not overlap.
func RenderRects(ctx context.Context, r *shadow.Renderer, dst *shadow.Surface, rects []image.Rectangle, opts Options) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(rects))
	total := len(rects)

	var done atomic.Int64
	rectChan := make(chan image.Rectangle, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rect := range rectChan {
				r.RenderRegion(dst, rect)
				n := done.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n), total)
				}
			}
		}()
	}

	// Send work
	var err error
send:
	for _, rect := range rects {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break send
		case rectChan <- rect:
		}
	}
	close(rectChan)

	wg.Wait()

	cfg := r.Config()
	logger().Debug("tiles: pass finished",
		"rects", total,
		"rendered", done.Load(),
		"workers", workers,
		"angle", cfg.Angle,
		"depth_angle", cfg.DepthAngle,
		"diffusion", cfg.DiffusionFactor,
	)
	return err
}
