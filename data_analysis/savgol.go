//go:build !nosavgol

package data_analysis

import (
	"log"

	"gonum.org/v1/gonum/mat"
)

func init() {
	savitzkyGolay = savgolFilter
}

// savgolFilter fits a polynomial of the given order by least squares over a
// sliding window and evaluates it at the window centre. The first and last
// half-windows are evaluated on the polynomial fitted to the first and last
// full window.
func savgolFilter(x []float64, window, order int) []float64 {
	n := len(x)
	out := make([]float64, n)
	copy(out, x)
	if window > n || window <= order {
		return out
	}

	h, err := savgolProjection(window, order)
	if err != nil {
		log.Printf("Savitzky-Golay coefficients unavailable (window %d, order %d): %v", window, order, err)
		return out
	}

	half := window / 2
	apply := func(row, start int) float64 {
		var sum float64
		for k := 0; k < window; k++ {
			sum += h.At(row, k) * x[start+k]
		}
		return sum
	}

	for i := 0; i < half; i++ {
		out[i] = apply(i, 0)
	}
	for i := half; i < n-half; i++ {
		out[i] = apply(half, i-half)
	}
	for i := n - half; i < n; i++ {
		out[i] = apply(i-(n-window), n-window)
	}
	return out
}

// savgolProjection returns the window×window hat matrix J(JᵀJ)⁻¹Jᵀ of the
// polynomial design matrix J over offsets -half..half. Row r holds the weights
// that evaluate the fitted polynomial at position r of the window.
func savgolProjection(window, order int) (*mat.Dense, error) {
	half := window / 2
	design := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		offset := float64(i - half)
		v := 1.0
		for k := 0; k <= order; k++ {
			design.Set(i, k, v)
			v *= offset
		}
	}

	var normal mat.Dense
	normal.Mul(design.T(), design)

	var coef mat.Dense
	if err := coef.Solve(&normal, design.T()); err != nil {
		return nil, err
	}

	var hat mat.Dense
	hat.Mul(design, &coef)
	return &hat, nil
}
