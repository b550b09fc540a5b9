package data_analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaireichart/flight-visualizer/telemetry"
)

type processOptions struct {
	pressureColumns []string
	phaseThreshold  float64
}

// Option tunes a pipeline run
type Option func(*processOptions)

// WithPressureColumns overrides the recognised pressure column labels
func WithPressureColumns(labels ...string) Option {
	return func(o *processOptions) {
		if len(labels) > 0 {
			o.pressureColumns = labels
		}
	}
}

// WithPhaseThreshold sets the level-flight band used for phase detection
func WithPhaseThreshold(mps float64) Option {
	return func(o *processOptions) {
		o.phaseThreshold = mps
	}
}

// Process runs the whole pipeline on a table: pressure cleaning, altitude
// conversion, smoothing and velocity. It returns a complete Dataset or an
// error, never a partial result.
func Process(table *telemetry.Table, params Params, opts ...Option) (*Dataset, error) {
	o := processOptions{
		pressureColumns: telemetry.DefaultPressureColumns,
		phaseThreshold:  DefaultPhaseThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if table == nil {
		return nil, fmt.Errorf("no table to process")
	}

	params = params.Normalized()

	pressure, err := telemetry.ResolvePressure(table, o.pressureColumns...)
	if err != nil {
		return nil, err
	}

	altRaw, err := PressureToAltitude(pressure)
	if err != nil {
		return nil, err
	}

	altClean := Smooth(altRaw, params)

	times := make([]int, len(pressure))
	for i := range times {
		times[i] = i
	}

	velClean := Gradient(altClean)
	phases, transitions := DetectPhases(velClean, o.phaseThreshold)

	return &Dataset{
		ID:          uuid.NewString(),
		Source:      table.Source,
		Params:      params,
		CreatedAt:   time.Now(),
		TimeS:       times,
		PressurePa:  pressure,
		AltRawM:     altRaw,
		AltCleanM:   altClean,
		VelRawMPS:   Gradient(altRaw),
		VelCleanMPS: velClean,
		Phases:      phases,
		Transitions: transitions,
		Apogee:      Apogee(altClean),
	}, nil
}
