package shadow

// BlendOver paints top onto bottom with straight-alpha normal blending.
// A fully transparent top leaves bottom untouched.
func BlendOver(top, bottom Pixel) Pixel {
	switch top.A {
	case 0:
		return bottom
	case 255:
		return top
	}

	ta := int(top.A)
	// Coverage of bottom that is still visible through top.
	ba := mul255(int(bottom.A), 255-ta)
	total := ba + ta

	mix := func(b, t uint8) uint8 {
		return uint8((int(b)*ba + int(t)*ta + total/2) / total)
	}
	return Pixel{
		R: mix(bottom.R, top.R),
		G: mix(bottom.G, top.G),
		B: mix(bottom.B, top.B),
		A: uint8(total),
	}
}

// mul255 returns a*b/255 rounded to nearest for a, b in [0, 255].
func mul255(a, b int) int {
	t := a*b + 0x80
	return ((t >> 8) + t) >> 8
}
