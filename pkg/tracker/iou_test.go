package tracker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoU(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Box
		want float64
	}{
		{"identical", Box{0, 0, 10, 10}, Box{0, 0, 10, 10}, 1},
		{"disjoint", Box{0, 0, 10, 10}, Box{20, 20, 30, 30}, 0},
		{"touching edges", Box{0, 0, 10, 10}, Box{10, 0, 20, 10}, 0},
		{"shifted by one", Box{0, 0, 10, 10}, Box{1, 1, 11, 11}, 81.0 / 119.0},
		{"contained", Box{0, 0, 10, 10}, Box{0, 0, 5, 10}, 0.5},
		{"both degenerate", Box{5, 5, 5, 5}, Box{5, 5, 5, 5}, 0},
		{"one degenerate", Box{0, 0, 10, 10}, Box{2, 2, 2, 8}, 0},
		{"inverted box", Box{10, 10, 0, 0}, Box{0, 0, 10, 10}, 0},
		{"both inverted", Box{10, 10, 0, 0}, Box{8, 8, 2, 2}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, IoU(tt.a, tt.b), 1e-12)
		})
	}
}

func TestIoU_Symmetric(t *testing.T) {
	t.Parallel()

	boxes := []Box{
		{0, 0, 10, 10},
		{1, 1, 11, 11},
		{5, -3, 9, 4},
		{100, 100, 220, 280},
		{3, 3, 3, 3},
		{7, 7, 2, 2},
	}
	for _, a := range boxes {
		for _, b := range boxes {
			assert.Equal(t, IoU(a, b), IoU(b, a), "IoU(%v,%v)", a, b)
		}
	}
}

func TestIoU_NeverNaN(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	nan := math.NaN()
	cases := [][2]Box{
		{{0, 0, inf, inf}, {0, 0, inf, inf}},
		{{-inf, -inf, inf, inf}, {0, 0, 1, 1}},
		{{nan, 0, 1, 1}, {0, 0, 1, 1}},
		{{nan, nan, nan, nan}, {nan, nan, nan, nan}},
	}
	for _, c := range cases {
		v := IoU(c[0], c[1])
		assert.False(t, math.IsNaN(v), "IoU(%v,%v) is NaN", c[0], c[1])
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestBoxArea(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100.0, Box{0, 0, 10, 10}.Area())
	assert.Equal(t, 0.0, Box{10, 0, 0, 10}.Area())
	assert.Equal(t, 0.0, Box{0, 10, 10, 0}.Area())
}
