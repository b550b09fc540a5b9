package data_analysis

import (
	"fmt"
	"math"

	"github.com/kaireichart/flight-visualizer/telemetry"
)

// ISA troposphere constants
const (
	seaLevelTemperature = 288.15   // K
	lapseRate           = 0.0065   // K/m
	gasConstant         = 287.05   // J/(kg·K)
	gravity             = 9.80665  // m/s²
	seaLevelPressure    = 101325.0 // Pa
)

// DomainError reports a pressure value the barometric formula cannot take
type DomainError struct {
	Index    int
	Pressure float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("pressure %g Pa at sample %d is not positive", e.Pressure, e.Index)
}

// PressureToAltitude converts static pressure (Pa) to altitude (m) with the ISA
// barometric formula:
//
//	h = (T0 / L) * ((P0 / P)^(R*L/g) - 1)
//
// Gaps (NaN) are filled the same way the pressure resolver fills them, so the
// conversion can be fed any series. Non-positive pressure yields a *DomainError.
func PressureToAltitude(pressure []float64) ([]float64, error) {
	cleaned, ok := telemetry.CleanSeries(pressure)
	if !ok {
		return nil, &telemetry.AllMissingError{Rows: len(pressure)}
	}

	exponent := gasConstant * lapseRate / gravity
	altitude := make([]float64, len(cleaned))
	for i, p := range cleaned {
		if p <= 0 {
			return nil, &DomainError{Index: i, Pressure: p}
		}
		altitude[i] = seaLevelTemperature / lapseRate * (math.Pow(seaLevelPressure/p, exponent) - 1)
	}
	return altitude, nil
}
