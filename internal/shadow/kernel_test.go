package shadow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRow(t *testing.T) {
	tests := []struct {
		radius float64
		want   []int
	}{
		{0, []int{16}},
		{1, []int{16, 32, 16}},
		{2, []int{16, 32, 48, 32, 16}},
		{2.5, []int{8, 24, 40, 56, 40, 24, 8}},
		{0.5, []int{8, 24, 8}},
		{-3, []int{16}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildRow(tt.radius), "radius %v", tt.radius)
	}
}

func TestBuildRowShape(t *testing.T) {
	for _, r := range []float64{0, 0.1, 0.9, 1, 1.3, 3.75, 10, 17.2} {
		w := BuildRow(r)
		assert.Len(t, w, 2*int(math.Ceil(r))+1, "radius %v", r)

		half := (len(w) - 1) / 2
		for i := range w {
			assert.GreaterOrEqual(t, w[i], 0)
			assert.Equal(t, w[i], w[len(w)-1-i], "radius %v not symmetric at %d", r, i)
			if i < half {
				assert.LessOrEqual(t, w[i], w[i+1], "radius %v not tapering at %d", r, i)
			}
		}
		assert.Equal(t, w, BuildRow(r), "radius %v not deterministic", r)
	}
}
