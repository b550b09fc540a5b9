package data_analysis

// Gradient differentiates a series sampled once per second: central
// differences inside, one-sided differences at the two ends. A single sample
// has zero velocity.
func Gradient(y []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		return out
	}

	out[0] = y[1] - y[0]
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / 2
	}
	out[n-1] = y[n-1] - y[n-2]
	return out
}
