package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadTable reads the first sheet/table of a flight-test data file.
// Supported formats: .xlsx/.xlsm (Excel), .csv, and .db/.sqlite/.sdlog (SQLite).
func ReadTable(path string, opts ReadOptions) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		table *Table
		err   error
	)
	switch ext {
	case ".xlsx", ".xlsm":
		table, err = readExcel(path, opts)
	case ".csv":
		table, err = readCSVFile(path, opts)
	case ".db", ".sqlite", ".sdlog":
		table, err = readSQLite(path, opts)
	case ".xls":
		return nil, fmt.Errorf("legacy .xls workbooks are not supported, save the file as .xlsx")
	default:
		return nil, fmt.Errorf("unsupported file format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	table.Source = filepath.Base(path)
	return table, nil
}

func readCSVFile(path string, opts ReadOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file, opts)
}

// ReadCSV parses CSV data into a table
func ReadCSV(reader io.Reader, opts ReadOptions) (*Table, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1 // Allow variable number of fields
	csvReader.LazyQuotes = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	return buildTable(records, opts.PressureColumns)
}

func readExcel(path string, opts ReadOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// Stored values, not the displayed text; a number format would otherwise round
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return buildTable(rows, opts.PressureColumns)
}

// buildTable turns raw string records into a table. The header is the first row
// naming one of the pressure labels, or the first non-empty row otherwise.
// Fully empty rows after the header are skipped.
func buildTable(records [][]string, labels []string) (*Table, error) {
	header := findHeaderRow(records, labels)
	if header == -1 {
		return nil, fmt.Errorf("no header row found")
	}

	columns := make([]string, len(records[header]))
	for i, name := range records[header] {
		columns[i] = strings.TrimSpace(name)
	}

	table := &Table{Columns: columns}
	for _, record := range records[header+1:] {
		if isEmptyRecord(record) {
			continue
		}
		row := make([]any, len(columns))
		for i := range row {
			if i < len(record) {
				row[i] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func findHeaderRow(records [][]string, labels []string) int {
	for i, record := range records {
		for _, cell := range record {
			cell = strings.TrimSpace(cell)
			for _, label := range labels {
				if cell == label {
					return i
				}
			}
		}
	}
	for i, record := range records {
		if !isEmptyRecord(record) {
			return i
		}
	}
	return -1
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
