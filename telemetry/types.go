package telemetry

// DefaultPressureColumns are the header labels recognised as the static pressure column
var DefaultPressureColumns = []string{"Pressure (Pa)", "pressure_pa"}

// Table is a sheet of records read from a flight-test data file.
// Row order is the recording order.
type Table struct {
	Source  string   `json:"source"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"-"`
}

// ReadOptions selects what part of a file becomes the table
type ReadOptions struct {
	Sheet string // xlsx sheet name, first sheet when empty
	Table string // sqlite table name, first table with a pressure column when empty

	// PressureColumns is used to pick a sqlite table when Table is empty
	PressureColumns []string
}

// ColumnIndex returns the position of the column with exactly the given name
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.Rows)
}

// Cell returns the value at row/col, nil for ragged rows
func (t *Table) Cell(row, col int) any {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}
