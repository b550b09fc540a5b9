package data_analysis

import (
	"math"
	"time"

	"github.com/kaireichart/flight-visualizer/playback"
)

// MaxWindow is the largest smoothing window offered in the UI
const MaxWindow = 51

// Params holds the user-adjustable smoothing settings
type Params struct {
	MedianWindow     int  `json:"median_window"`
	MeanWindow       int  `json:"mean_window"`
	PolynomialFilter bool `json:"polynomial_filter"`
}

// DefaultParams returns the smoothing settings used before the user changes anything
func DefaultParams() Params {
	return Params{
		MedianWindow:     5,
		MeanWindow:       5,
		PolynomialFilter: PolynomialFilterAvailable(),
	}
}

// Normalized returns params with both windows clamped to at least 1 and the
// polynomial filter switched off when it is not compiled in.
func (p Params) Normalized() Params {
	p.MedianWindow = ClampWindow(p.MedianWindow)
	p.MeanWindow = ClampWindow(p.MeanWindow)
	p.PolynomialFilter = p.PolynomialFilter && PolynomialFilterAvailable()
	return p
}

// ClampWindow coerces a window size to at least 1
func ClampWindow(w int) int {
	if w < 1 {
		return 1
	}
	return w
}

// ClampWindowFloat truncates a fractional window size and clamps it to at least 1
func ClampWindowFloat(w float64) int {
	if math.IsNaN(w) || w < 1 {
		return 1
	}
	if w > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(w)
}

// Phase classifies the vertical motion at one sample
type Phase string

const (
	PhaseAscending  Phase = "ascending"
	PhaseLevel      Phase = "level"
	PhaseDescending Phase = "descending"
)

// Transition marks the sample where the flight phase changed
type Transition struct {
	Index int   `json:"index"`
	Phase Phase `json:"phase"`
}

// Dataset is the processed result of one pipeline run. It is never modified
// after Process returns; reprocessing produces a new Dataset.
type Dataset struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Params    Params    `json:"params"`
	CreatedAt time.Time `json:"created_at"`

	TimeS       []int     `json:"time_s"`
	PressurePa  []float64 `json:"pressure_pa"`
	AltRawM     []float64 `json:"alt_raw_m"`
	AltCleanM   []float64 `json:"alt_clean_m"`
	VelRawMPS   []float64 `json:"vel_raw_mps"`
	VelCleanMPS []float64 `json:"vel_clean_mps"`

	Phases      []Phase      `json:"phases"`
	Transitions []Transition `json:"transitions"`
	Apogee      int          `json:"apogee_index"`
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return len(d.TimeS)
}

// Frame returns the prefix of the dataset up to idx inclusive, clamped to the
// valid range. The slices share storage with the dataset and have their
// capacity limited so appends by a sink cannot write into it.
func (d *Dataset) Frame(idx int) playback.Frame {
	n := d.Len()
	if idx > n-1 {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	end := idx + 1
	if n == 0 {
		end = 0
	}

	frame := playback.Frame{
		DatasetID:   d.ID,
		Index:       idx,
		Total:       n,
		TimeS:       d.TimeS[:end:end],
		AltRawM:     d.AltRawM[:end:end],
		AltCleanM:   d.AltCleanM[:end:end],
		VelCleanMPS: d.VelCleanMPS[:end:end],
	}
	if idx < len(d.Phases) {
		frame.Phase = string(d.Phases[idx])
	}
	return frame
}
