package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 7, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 50), B: 90, A: uint8(40 + x*20 + y*10)})
		}
	}
	return img
}

func TestSavePNGRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	src := sample()
	require.NoError(t, Save(path, src, SaveOptions{}))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), got.Bounds())
	assert.Equal(t, src.Pix, got.Pix)
}

func TestSaveWebPRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.webp")
	src := sample()
	require.NoError(t, Save(path, src, SaveOptions{}))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), got.Bounds())
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			assert.Equal(t, src.NRGBAAt(x, y).A, got.NRGBAAt(x, y).A, "alpha at (%d,%d)", x, y)
		}
	}
}

func TestSaveJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	require.NoError(t, Save(path, sample(), SaveOptions{JPEGQuality: 75}))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 7, 5), got.Bounds())
}

func TestUnsupported(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, Save(filepath.Join(dir, "out.gif"), sample(), SaveOptions{}))

	_, err := Load(filepath.Join(dir, "in.psd"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	assert.True(t, Supported("A.TGA"))
	assert.True(t, Supported("x.webp"))
	assert.False(t, Supported("x.txt"))
	assert.True(t, Writable("x.BMP"))
	assert.False(t, Writable("x.tga"))
}

func TestToNRGBARebasesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(3, 4, 6, 6))
	src.SetRGBA(3, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	got := ToNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), got.Bounds())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, got.NRGBAAt(0, 0))

	same := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, same, ToNRGBA(same))
}

// opaquePair is a 2x1 image every lossless format stores exactly.
func opaquePair() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	return img
}

// tgaPair encodes opaquePair as an uncompressed 32-bit true-color TGA.
func tgaPair() []byte {
	header := []byte{
		0, 0, 2, // no id, no color map, uncompressed true-color
		0, 0, 0, 0, 0, // color map spec
		0, 0, 0, 0, // origin
		2, 0, 1, 0, // width, height
		32, 0x28, // bits per pixel, 8 alpha bits + top-left origin
	}
	pixels := []byte{30, 20, 10, 255, 50, 100, 200, 255} // BGRA
	return append(header, pixels...)
}

func TestLoadEachFormat(t *testing.T) {
	want := opaquePair()
	paletted := image.NewPaletted(want.Bounds(), color.Palette{
		color.RGBA{R: 10, G: 20, B: 30, A: 255},
		color.RGBA{R: 200, G: 100, B: 50, A: 255},
	})
	paletted.SetColorIndex(1, 0, 1)

	tests := []struct {
		name   string
		encode func(buf *bytes.Buffer) error
		exact  bool
	}{
		{"in.png", func(buf *bytes.Buffer) error { return png.Encode(buf, want) }, true},
		{"in.jpg", func(buf *bytes.Buffer) error { return jpeg.Encode(buf, want, nil) }, false},
		{"in.JPEG", func(buf *bytes.Buffer) error { return jpeg.Encode(buf, want, nil) }, false},
		{"in.gif", func(buf *bytes.Buffer) error { return gif.Encode(buf, paletted, nil) }, true},
		{"in.bmp", func(buf *bytes.Buffer) error { return bmp.Encode(buf, want) }, true},
		{"in.tif", func(buf *bytes.Buffer) error { return tiff.Encode(buf, want, nil) }, true},
		{"in.tiff", func(buf *bytes.Buffer) error { return tiff.Encode(buf, want, nil) }, true},
		{"in.webp", func(buf *bytes.Buffer) error { return nativewebp.Encode(buf, want, nil) }, true},
		{"in.tga", func(buf *bytes.Buffer) error { _, err := buf.Write(tgaPair()); return err }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf))
			path := filepath.Join(t.TempDir(), tt.name)
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

			got, err := Load(path)
			require.NoError(t, err)
			require.Equal(t, want.Bounds(), got.Bounds())
			if tt.exact {
				assert.Equal(t, want.NRGBAAt(0, 0), got.NRGBAAt(0, 0))
				assert.Equal(t, want.NRGBAAt(1, 0), got.NRGBAAt(1, 0))
			}
		})
	}
}

func TestLoadDoesNotSniffFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, opaquePair()))
	path := filepath.Join(t.TempDir(), "mislabelled.tga")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
