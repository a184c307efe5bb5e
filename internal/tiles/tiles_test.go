package tiles

import (
	"context"
	"image"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadowcast/internal/shadow"
)

func testSource(w, h int) *shadow.Surface {
	s := shadow.NewSurface(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.Set(x, y, shadow.Pixel{R: uint8(x), G: uint8(y), B: 200, A: uint8((x*13 + y*29) % 256)})
		}
	}
	return s
}

func TestSplit(t *testing.T) {
	rects := Split(image.Rect(2, 1, 10, 11), 4)
	assert.Equal(t, []image.Rectangle{
		image.Rect(2, 1, 10, 5),
		image.Rect(2, 5, 10, 9),
		image.Rect(2, 9, 10, 11),
	}, rects)

	assert.Len(t, Split(image.Rect(0, 0, 5, 100), 0), 4)
	assert.Nil(t, Split(image.Rect(0, 0, 0, 10), 4))
}

func TestRenderMatchesSingleRegion(t *testing.T) {
	src := testSource(37, 41)
	cfg := shadow.Config{Opacity: 200, Angle: 65, DepthAngle: 40, DiffusionFactor: 90, KeepOriginalImage: true}

	want := shadow.NewSurface(37, 41)
	require.NoError(t, shadow.RenderRegion(want, src, want.Bounds(), cfg))

	for _, opts := range []Options{
		{Workers: 1, BandHeight: 41},
		{Workers: 4, BandHeight: 1},
		{Workers: 3, BandHeight: 6},
		{},
	} {
		got := shadow.NewSurface(37, 41)
		require.NoError(t, Render(context.Background(), got, src, cfg, opts))
		assert.Equal(t, want.Pix, got.Pix, "options %+v", opts)
	}
}

func TestRenderProgress(t *testing.T) {
	src := testSource(8, 20)
	dst := shadow.NewSurface(8, 20)

	var calls atomic.Int64
	var last atomic.Int64
	err := Render(context.Background(), dst, src, shadow.DefaultConfig(), Options{
		Workers:    2,
		BandHeight: 3,
		Progress: func(done, total int) {
			calls.Add(1)
			assert.Equal(t, 7, total)
			if done == total {
				last.Store(int64(done))
			}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), calls.Load())
	assert.Equal(t, int64(7), last.Load())
}

func TestRenderInvalidConfig(t *testing.T) {
	src := testSource(4, 4)
	dst := shadow.NewSurface(4, 4)
	dst.Set(1, 1, shadow.Pixel{A: 9})

	err := Render(context.Background(), dst, src, shadow.Config{Opacity: 300, Angle: 45, DepthAngle: 45}, Options{})
	assert.ErrorIs(t, err, shadow.ErrInvalidConfig)
	assert.Equal(t, shadow.Pixel{A: 9}, dst.At(1, 1))
}

func TestRenderCancelled(t *testing.T) {
	src := testSource(4, 16)
	dst := shadow.NewSurface(4, 16)
	dst.Set(0, 0, shadow.Pixel{A: 9})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Render(ctx, dst, src, shadow.DefaultConfig(), Options{Workers: 2, BandHeight: 2})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, shadow.Pixel{A: 9}, dst.At(0, 0))
}
