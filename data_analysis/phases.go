package data_analysis

import "math"

// DefaultPhaseThreshold is the vertical speed (m/s) below which the flight is considered level
const DefaultPhaseThreshold = 0.5

// DetectPhases classifies every sample by its vertical speed. Speeds within
// ±threshold count as level flight so sensor noise does not flip the phase.
// Only changes are reported as transitions; the first sample always opens one.
func DetectPhases(velocity []float64, threshold float64) ([]Phase, []Transition) {
	threshold = math.Abs(threshold)

	phases := make([]Phase, len(velocity))
	var transitions []Transition
	for i, v := range velocity {
		switch {
		case v > threshold:
			phases[i] = PhaseAscending
		case v < -threshold:
			phases[i] = PhaseDescending
		default:
			phases[i] = PhaseLevel
		}

		if i == 0 || phases[i] != phases[i-1] {
			transitions = append(transitions, Transition{Index: i, Phase: phases[i]})
		}
	}
	return phases, transitions
}

// Apogee returns the index of the highest sample, -1 for an empty series
func Apogee(altitude []float64) int {
	best := -1
	for i, a := range altitude {
		if best == -1 || a > altitude[best] {
			best = i
		}
	}
	return best
}
