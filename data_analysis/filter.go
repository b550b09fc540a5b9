package data_analysis

// Savitzky-Golay settings: quadratic fit over 7 samples
const (
	polynomialOrder  = 2
	polynomialWindow = 7
)

// savitzkyGolay is nil when the binary is built with -tags nosavgol
var savitzkyGolay func(x []float64, window, order int) []float64

// PolynomialFilterAvailable reports whether the Savitzky-Golay filter is compiled in
func PolynomialFilterAvailable() bool {
	return savitzkyGolay != nil
}

// PolynomialFilterWindow picks the filter window for a sequence of n samples:
// 7, or the largest odd length not above n. A result below 3 means the filter
// cannot run.
func PolynomialFilterWindow(n int) int {
	if n >= polynomialWindow {
		return polynomialWindow
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

// PolynomialFilter applies the Savitzky-Golay filter. When the filter is not
// available or the sequence is too short it returns a copy of x.
func PolynomialFilter(x []float64) []float64 {
	window := PolynomialFilterWindow(len(x))
	if savitzkyGolay == nil || window < 3 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	return savitzkyGolay(x, window, polynomialOrder)
}
