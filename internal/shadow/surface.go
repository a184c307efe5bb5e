package shadow

import (
	"image"
	"image/color"
)

// Pixel is a straight-alpha 8-bit RGBA color.
type Pixel = color.NRGBA

// Surface is a zero-origin pixel grid stored as flat interleaved RGBA.
// The core never resizes or reallocates a Surface it is handed.
type Surface struct {
	Width  int
	Height int
	Stride int
	Pix    []uint8 // RGBA interleaved, row y starts at y*Stride
}

// NewSurface allocates a fully transparent surface.
func NewSurface(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{
		Width:  w,
		Height: h,
		Stride: w * 4,
		Pix:    make([]uint8, w*h*4),
	}
}

// FromNRGBA wraps img without copying. Pixel (0,0) of the surface is
// img.Bounds().Min.
func FromNRGBA(img *image.NRGBA) *Surface {
	b := img.Bounds()
	s := &Surface{Width: b.Dx(), Height: b.Dy(), Stride: img.Stride}
	if !b.Empty() {
		s.Pix = img.Pix[img.PixOffset(b.Min.X, b.Min.Y):]
	}
	return s
}

// NRGBA returns an image sharing the surface's pixel memory.
func (s *Surface) NRGBA() *image.NRGBA {
	return &image.NRGBA{Pix: s.Pix, Stride: s.Stride, Rect: s.Bounds()}
}

// Bounds returns the rectangle (0,0)-(Width,Height).
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// Contains reports whether (x,y) addresses a pixel of s.
func (s *Surface) Contains(x, y int) bool {
	return x >= 0 && x < s.Width && y >= 0 && y < s.Height
}

func (s *Surface) offset(x, y int) int {
	return y*s.Stride + x*4
}

// At returns the pixel at (x,y). The caller must ensure it is in bounds.
func (s *Surface) At(x, y int) Pixel {
	i := s.offset(x, y)
	p := s.Pix[i : i+4 : i+4]
	return Pixel{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set writes the pixel at (x,y). The caller must ensure it is in bounds.
func (s *Surface) Set(x, y int, c Pixel) {
	i := s.offset(x, y)
	p := s.Pix[i : i+4 : i+4]
	p[0] = c.R
	p[1] = c.G
	p[2] = c.B
	p[3] = c.A
}

func (s *Surface) alpha(x, y int) uint8 {
	return s.Pix[s.offset(x, y)+3]
}
