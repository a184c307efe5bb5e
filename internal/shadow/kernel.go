package shadow

import "math"

// kernelScale is the weight of a tap at distance 0 from a radius-0 kernel.
const kernelScale = 16

// BuildRow returns the blur weights for the given radius.
//
// The kernel has 2*ceil(radius)+1 taps and is symmetric. Walking from the
// centre outward the weight is int(16*(amount+1)), where amount starts at
// radius and drops by one per tap, so the shape is a linear taper rather
// than a true Gaussian. Weights are not normalised; callers divide by the
// sum of the taps they actually used.
func BuildRow(radius float64) []int {
	if radius < 0 || math.IsNaN(radius) {
		radius = 0
	}
	r := int(math.Ceil(radius))
	weights := make([]int, 2*r+1)

	amount := radius
	for i := r; i >= 0; i-- {
		w := int(kernelScale * (amount + 1))
		weights[i] = w
		weights[len(weights)-i-1] = w
		amount--
	}
	return weights
}
