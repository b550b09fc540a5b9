package data_analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolynomialFilterWindow(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{100, 7}, {7, 7}, {6, 5}, {5, 5}, {4, 3}, {3, 3}, {2, 1}, {1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PolynomialFilterWindow(tt.n), "n=%d", tt.n)
	}
}

func TestPolynomialFilter_TooShort(t *testing.T) {
	x := []float64{4, 8}
	got := PolynomialFilter(x)
	assert.Equal(t, x, got)

	got[0] = 99
	assert.Equal(t, 4.0, x[0], "result must be a copy")
}

func TestPolynomialFilter_Unavailable(t *testing.T) {
	saved := savitzkyGolay
	savitzkyGolay = nil
	t.Cleanup(func() { savitzkyGolay = saved })

	assert.False(t, PolynomialFilterAvailable())
	assert.False(t, DefaultParams().PolynomialFilter)
	assert.False(t, Params{MedianWindow: 3, MeanWindow: 3, PolynomialFilter: true}.Normalized().PolynomialFilter)

	x := []float64{1, 5, 2, 8, 3, 9, 4, 7}
	assert.Equal(t, x, PolynomialFilter(x))

	// Requesting the filter falls back to median and mean only
	withFilter := Smooth(x, Params{MedianWindow: 3, MeanWindow: 3, PolynomialFilter: true})
	without := MeanFilter(MedianFilter(x, 3), 3)
	assert.Equal(t, without, withFilter)
}
