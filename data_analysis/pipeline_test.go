package data_analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaireichart/flight-visualizer/telemetry"
)

func pressureTable(column string, values ...any) *telemetry.Table {
	t := &telemetry.Table{Source: "test.csv", Columns: []string{"Time", column}}
	for i, v := range values {
		t.Rows = append(t.Rows, []any{i, v})
	}
	return t
}

func TestProcess_PlaceholderScenario(t *testing.T) {
	table := pressureTable("Pressure (Pa)", 101325.0, "*****", "100129", "1,000")

	ds, err := Process(table, Params{MedianWindow: 1, MeanWindow: 1})
	require.NoError(t, err)

	assert.Equal(t, []float64{101325, 100727, 100129, 1000}, ds.PressurePa)
	assert.Equal(t, []int{0, 1, 2, 3}, ds.TimeS)
	assert.InDelta(t, 0, ds.AltRawM[0], 1e-6)
	assert.InDelta(t, 49.9539, ds.AltRawM[1], 1e-3)
	assert.InDelta(t, 100.2620, ds.AltRawM[2], 1e-3)
	assert.InDelta(t, 62406.31, ds.AltRawM[3], 1e-2)
	assert.Equal(t, "test.csv", ds.Source)
	assert.NotEmpty(t, ds.ID)
}

func TestProcess_LengthInvariant(t *testing.T) {
	for n := 1; n <= 15; n++ {
		values := make([]any, n)
		for i := range values {
			values[i] = 101325.0 - float64(i*i*10)
		}
		ds, err := Process(pressureTable("Pressure (Pa)", values...), DefaultParams())
		require.NoError(t, err)

		assert.Equal(t, n, ds.Len())
		for name, l := range map[string]int{
			"pressure": len(ds.PressurePa), "alt_raw": len(ds.AltRawM), "alt_clean": len(ds.AltCleanM),
			"vel_raw": len(ds.VelRawMPS), "vel_clean": len(ds.VelCleanMPS), "phases": len(ds.Phases),
		} {
			assert.Equal(t, n, l, "%s length for n=%d", name, n)
		}
		for i, ts := range ds.TimeS {
			assert.Equal(t, i, ts)
		}
	}
}

func TestProcess_ConstantPressure(t *testing.T) {
	values := make([]any, 30)
	for i := range values {
		values[i] = 101325
	}

	ds, err := Process(pressureTable("Pressure (Pa)", values...), Params{MedianWindow: 5, MeanWindow: 5, PolynomialFilter: true})
	require.NoError(t, err)

	for i := 0; i < ds.Len(); i++ {
		assert.InDelta(t, 0, ds.AltRawM[i], 1e-6)
		assert.InDelta(t, 0, ds.AltCleanM[i], 1e-6)
		assert.InDelta(t, 0, ds.VelRawMPS[i], 1e-6)
		assert.InDelta(t, 0, ds.VelCleanMPS[i], 1e-6)
		assert.Equal(t, PhaseLevel, ds.Phases[i])
	}
	assert.Len(t, ds.Transitions, 1)
}

func TestProcess_Errors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		ds, err := Process(pressureTable("Temperature", 20.0), DefaultParams())
		assert.Nil(t, ds)
		var schemaErr *telemetry.SchemaError
		assert.True(t, errors.As(err, &schemaErr))
	})

	t.Run("all missing", func(t *testing.T) {
		ds, err := Process(pressureTable("Pressure (Pa)", "*****", ""), DefaultParams())
		assert.Nil(t, ds)
		var missingErr *telemetry.AllMissingError
		assert.True(t, errors.As(err, &missingErr))
	})

	t.Run("non-positive pressure", func(t *testing.T) {
		ds, err := Process(pressureTable("Pressure (Pa)", 101325.0, -5.0, 100000.0), DefaultParams())
		assert.Nil(t, ds)
		var domainErr *DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, 1, domainErr.Index)
	})

	t.Run("nil table", func(t *testing.T) {
		_, err := Process(nil, DefaultParams())
		assert.Error(t, err)
	})
}

func TestProcess_Options(t *testing.T) {
	table := pressureTable("baro", 101325.0, 101000.0, 100500.0)

	_, err := Process(table, DefaultParams())
	require.Error(t, err)

	ds, err := Process(table, DefaultParams(), WithPressureColumns("baro"), WithPhaseThreshold(1000))
	require.NoError(t, err)
	for _, p := range ds.Phases {
		assert.Equal(t, PhaseLevel, p)
	}
}

func TestProcess_NormalizesParams(t *testing.T) {
	ds, err := Process(pressureTable("Pressure (Pa)", 101325.0, 101300.0), Params{MedianWindow: 0, MeanWindow: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Params.MedianWindow)
	assert.Equal(t, 1, ds.Params.MeanWindow)
}

func TestProcess_NewIDPerRun(t *testing.T) {
	table := pressureTable("Pressure (Pa)", 101325.0, 101300.0)
	a, err := Process(table, DefaultParams())
	require.NoError(t, err)
	b, err := Process(table, DefaultParams())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDataset_Frame(t *testing.T) {
	ds, err := Process(pressureTable("Pressure (Pa)", 101325.0, 101300.0, 101200.0, 101100.0), DefaultParams())
	require.NoError(t, err)

	frame := ds.Frame(2)
	assert.Equal(t, 2, frame.Index)
	assert.Equal(t, 4, frame.Total)
	assert.Equal(t, ds.ID, frame.DatasetID)
	assert.Equal(t, []int{0, 1, 2}, frame.TimeS)
	assert.Len(t, frame.AltCleanM, 3)
	assert.Equal(t, 3, cap(frame.AltCleanM), "appending must not reach into the dataset")
	assert.Equal(t, string(ds.Phases[2]), frame.Phase)

	assert.Equal(t, 0, ds.Frame(-1).Index)
	assert.Equal(t, 3, ds.Frame(100).Index)
}
