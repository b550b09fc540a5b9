package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ResolvePressure extracts the pressure column from the table and cleans it into a
// gap-free numeric series in recording order.
//
// Placeholder tokens such as "*****" become gaps, "1,000" parses as 1000, gaps are
// filled by linear interpolation between neighbouring samples and the ends are
// padded with the nearest valid sample. Zero and negative values are kept; they are
// rejected later by the altitude conversion.
func ResolvePressure(t *Table, labels ...string) ([]float64, error) {
	if len(labels) == 0 {
		labels = DefaultPressureColumns
	}

	col := -1
	name := ""
	for _, label := range labels {
		if idx, ok := t.ColumnIndex(label); ok {
			col, name = idx, label
			break
		}
	}
	if col == -1 {
		return nil, &SchemaError{Wanted: labels, Available: t.Columns}
	}

	raw := make([]float64, t.Len())
	for i := range t.Rows {
		raw[i] = ParseNumber(t.Cell(i, col))
	}

	cleaned, ok := CleanSeries(raw)
	if !ok {
		return nil, &AllMissingError{Column: name, Rows: t.Len()}
	}
	return cleaned, nil
}

// ParseNumber converts a cell to a float, NaN when the cell holds no usable number
func ParseNumber(v any) float64 {
	s := strings.ReplaceAll(toText(v), ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func toText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

// CleanSeries fills NaN gaps: interior gaps are linearly interpolated by index,
// leading gaps take the first valid value and trailing gaps the last one.
// It returns false when the series holds no valid value. Clean input is returned
// unchanged (as a copy).
func CleanSeries(values []float64) ([]float64, bool) {
	out := make([]float64, len(values))
	copy(out, values)

	prev := -1
	for i, v := range out {
		if !isValid(v) {
			continue
		}
		if prev == -1 {
			// Backward-fill the head
			for j := 0; j < i; j++ {
				out[j] = v
			}
		} else if i-prev > 1 {
			step := (v - out[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out[j] = out[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}

	if prev == -1 {
		return nil, false
	}

	// Forward-fill the tail
	for j := prev + 1; j < len(out); j++ {
		out[j] = out[prev]
	}
	return out, true
}

func isValid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
