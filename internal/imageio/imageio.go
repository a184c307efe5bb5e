package imageio

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// DefaultJPEGQuality is used when SaveOptions leaves the quality unset.
const DefaultJPEGQuality = 90

// decoders picks the decoder by extension. TGA has no magic number and
// registers with image.RegisterFormat as matching anything, so image.Decode
// cannot be trusted to sniff the format.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".tga":  tga.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
}

var writable = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".webp": true,
}

// Supported reports whether path has an extension Load can decode.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Writable reports whether path has an extension Save can encode.
func Writable(path string) bool {
	return writable[strings.ToLower(filepath.Ext(path))]
}

// Load decodes the image at path into straight-alpha NRGBA with a zero origin.
func Load(path string) (*image.NRGBA, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("imageio: unsupported extension: %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts img to NRGBA with bounds starting at (0,0).
// An NRGBA that already starts at the origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// SaveOptions tunes the encoders that have settings.
type SaveOptions struct {
	JPEGQuality int // 1-100; <= 0 means DefaultJPEGQuality
}

// Save encodes img to path, choosing the format from the extension.
// Parent directories are created as needed.
func Save(path string, img image.Image, opts SaveOptions) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !writable[ext] {
		return fmt.Errorf("imageio: unsupported output extension: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("imageio: mkdir %s: %w", filepath.Dir(path), err)
	}

	if ext == ".webp" {
		return saveWebP(path, img)
	}

	var enc imgio.Encoder
	switch ext {
	case ".png":
		enc = imgio.PNGEncoder()
	case ".bmp":
		enc = imgio.BMPEncoder()
	default:
		q := opts.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		enc = imgio.JPEGEncoder(q)
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("imageio: save %s: %w", path, err)
	}
	return nil
}

func saveWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("imageio: WebP encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("imageio: close %s: %w", path, err)
	}
	return nil
}
