package data_analysis

import (
	"sort"
)

// Smooth runs the altitude cleaning cascade: centered rolling median, then
// centered rolling mean, then (optionally) the Savitzky-Golay filter. The
// result always has the same length as the input.
func Smooth(altitude []float64, p Params) []float64 {
	p = p.Normalized()

	smoothed := MeanFilter(MedianFilter(altitude, p.MedianWindow), p.MeanWindow)
	if p.PolynomialFilter {
		smoothed = PolynomialFilter(smoothed)
	}
	return smoothed
}

// MedianFilter applies a centered rolling median. Near the ends the window
// shrinks to the samples that exist; an even-sized window averages its two
// middle values.
func MedianFilter(x []float64, window int) []float64 {
	return rolling(x, window, (*slidingWindow).median)
}

// MeanFilter applies a centered rolling arithmetic mean with the same edge
// handling as MedianFilter.
func MeanFilter(x []float64, window int) []float64 {
	return rolling(x, window, (*slidingWindow).mean)
}

// rolling evaluates stat over the window [i-left, i+right] for every i,
// clipped to the sequence. For odd windows left == right; for even windows
// the extra sample is on the left.
func rolling(x []float64, window int, stat func(*slidingWindow) float64) []float64 {
	window = ClampWindow(window)
	n := len(x)
	out := make([]float64, n)

	right := (window - 1) / 2
	left := window - 1 - right

	// The window never holds more than the whole sequence
	win := newSlidingWindow(min(window, n))
	lo, hi := 0, -1
	for i := 0; i < n; i++ {
		for lo < max(0, i-left) {
			win.popFront()
			lo++
		}
		for hi < min(n-1, i+right) {
			hi++
			win.pushBack(x[hi])
		}
		out[i] = stat(win)
	}
	return out
}

// slidingWindow is a FIFO of the samples currently in the window plus a sorted
// copy for the median and a running sum for the mean.
type slidingWindow struct {
	queue  []float64
	head   int
	sorted []float64
	sum    float64
}

func newSlidingWindow(capacity int) *slidingWindow {
	return &slidingWindow{
		queue:  make([]float64, 0, capacity),
		sorted: make([]float64, 0, capacity),
	}
}

func (w *slidingWindow) len() int {
	return len(w.queue) - w.head
}

func (w *slidingWindow) pushBack(v float64) {
	// Compact the consumed prefix instead of growing forever
	if w.head > 0 && len(w.queue) == cap(w.queue) {
		n := copy(w.queue, w.queue[w.head:])
		w.queue = w.queue[:n]
		w.head = 0
	}
	w.queue = append(w.queue, v)
	w.sum += v

	pos := sort.SearchFloat64s(w.sorted, v)
	w.sorted = append(w.sorted, 0)
	copy(w.sorted[pos+1:], w.sorted[pos:])
	w.sorted[pos] = v
}

func (w *slidingWindow) popFront() {
	if w.len() == 0 {
		return
	}
	v := w.queue[w.head]
	w.head++
	w.sum -= v

	pos := sort.SearchFloat64s(w.sorted, v)
	w.sorted = append(w.sorted[:pos], w.sorted[pos+1:]...)

	if w.len() == 0 {
		w.queue = w.queue[:0]
		w.head = 0
		w.sum = 0
	}
}

func (w *slidingWindow) mean() float64 {
	n := w.len()
	if n == 0 {
		return 0
	}
	return w.sum / float64(n)
}

func (w *slidingWindow) median() float64 {
	n := len(w.sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return w.sorted[n/2]
	}
	return (w.sorted[n/2-1] + w.sorted[n/2]) / 2
}
