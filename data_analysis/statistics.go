package data_analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DatasetStatistics summarises a processed dataset
type DatasetStatistics struct {
	Samples int `json:"samples"`

	AltitudeStats    *DataStatistics `json:"altitude_stats"`
	RawAltitudeStats *DataStatistics `json:"raw_altitude_stats"`
	VelocityStats    *DataStatistics `json:"velocity_stats"`

	// Residual of raw against cleaned altitude, a measure of sensor noise
	NoiseStdDev float64 `json:"noise_std_dev"`

	ApogeeIndex     int     `json:"apogee_index"`
	ApogeeAltitudeM float64 `json:"apogee_altitude_m"`
	MaxClimbMPS     float64 `json:"max_climb_mps"`
	MaxSinkMPS      float64 `json:"max_sink_mps"`

	PhaseSeconds map[Phase]int `json:"phase_seconds"`
	Transitions  []Transition  `json:"transitions"`
}

// DataStatistics represents statistical measures for a data series
type DataStatistics struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Median   float64 `json:"median"`
}

// CalculateDatasetStatistics calculates summary statistics for a dataset
func CalculateDatasetStatistics(ds *Dataset) *DatasetStatistics {
	result := &DatasetStatistics{
		Samples:      ds.Len(),
		ApogeeIndex:  ds.Apogee,
		PhaseSeconds: make(map[Phase]int),
		Transitions:  ds.Transitions,
	}
	if ds.Len() == 0 {
		return result
	}

	result.AltitudeStats = calculateDataStatistics(ds.AltCleanM)
	result.RawAltitudeStats = calculateDataStatistics(ds.AltRawM)
	result.VelocityStats = calculateDataStatistics(ds.VelCleanMPS)

	residual := make([]float64, ds.Len())
	floats.SubTo(residual, ds.AltRawM, ds.AltCleanM)
	result.NoiseStdDev = math.Sqrt(stat.PopVariance(residual, nil))

	if ds.Apogee >= 0 && ds.Apogee < ds.Len() {
		result.ApogeeAltitudeM = ds.AltCleanM[ds.Apogee]
	}
	result.MaxClimbMPS = math.Max(0, floats.Max(ds.VelCleanMPS))
	result.MaxSinkMPS = math.Max(0, -floats.Min(ds.VelCleanMPS))

	// One sample is one second
	for _, p := range ds.Phases {
		result.PhaseSeconds[p]++
	}

	return result
}

// calculateDataStatistics calculates comprehensive statistics for a data series
func calculateDataStatistics(data []float64) *DataStatistics {
	if len(data) == 0 {
		return nil
	}

	// Sort data for median calculation
	sortedData := make([]float64, len(data))
	copy(sortedData, data)
	sort.Float64s(sortedData)

	count := len(sortedData)
	mean, variance := stat.PopMeanVariance(sortedData, nil)
	min := sortedData[0]
	max := sortedData[count-1]

	var median float64
	if count%2 == 0 {
		median = (sortedData[count/2-1] + sortedData[count/2]) / 2
	} else {
		median = sortedData[count/2]
	}

	return &DataStatistics{
		Count:    count,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Min:      min,
		Max:      max,
		Range:    max - min,
		Median:   median,
	}
}
