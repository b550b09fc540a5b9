package telemetry

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV_HeaderAfterMetadata(t *testing.T) {
	data := "Recorded at: 7/30/2025 9:05:41 PM\n" +
		"\n" +
		"Time,Pressure (Pa),Temp\n" +
		"0,101325,15\n" +
		",,\n" +
		"1,\"1,000\",14\n"

	table, err := ReadCSV(strings.NewReader(data), ReadOptions{PressureColumns: DefaultPressureColumns})
	require.NoError(t, err)

	assert.Equal(t, []string{"Time", "Pressure (Pa)", "Temp"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "1,000", table.Cell(1, 1))
}

func TestReadCSV_FirstRowHeaderAndBOM(t *testing.T) {
	data := "\ufeffpressure_pa,alt\n100,1\n200\n"

	table, err := ReadCSV(strings.NewReader(data), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"pressure_pa", "alt"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Nil(t, table.Cell(1, 1))
	assert.Nil(t, table.Cell(1, 5))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), ReadOptions{})
	assert.Error(t, err)
}

func TestReadTable_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Time", "Pressure (Pa)"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{0, 101325}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{1, "*****"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{2, 100129}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := ReadTable(path, ReadOptions{PressureColumns: DefaultPressureColumns})
	require.NoError(t, err)
	assert.Equal(t, "flight.xlsx", table.Source)
	require.Equal(t, 3, table.Len())

	pressure, err := ResolvePressure(table)
	require.NoError(t, err)
	assert.Equal(t, []float64{101325, 100727, 100129}, pressure)
}

func TestReadTable_ExcelNumberFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styled.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Time", "Pressure (Pa)"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{0, 101325.67}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{1, 99876.4}))

	integer, err := f.NewStyle(&excelize.Style{NumFmt: 1}) // "0"
	require.NoError(t, err)
	unit := `0.0 "hPa"`
	custom, err := f.NewStyle(&excelize.Style{CustomNumFmt: &unit})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", integer))
	require.NoError(t, f.SetCellStyle("Sheet1", "B3", "B3", custom))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := ReadTable(path, ReadOptions{PressureColumns: DefaultPressureColumns})
	require.NoError(t, err)

	pressure, err := ResolvePressure(table)
	require.NoError(t, err)
	assert.Equal(t, []float64{101325.67, 99876.4}, pressure)
}

func TestReadTable_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.sdlog")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE meta (key TEXT, value TEXT);
		CREATE TABLE samples (t INTEGER, "Pressure (Pa)" REAL, note TEXT);
		INSERT INTO meta VALUES ('source', 'bench');
		INSERT INTO samples VALUES (0, 101325, NULL), (1, NULL, 'dropout'), (2, 100129, NULL);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	table, err := ReadTable(path, ReadOptions{PressureColumns: DefaultPressureColumns})
	require.NoError(t, err)
	assert.Equal(t, []string{"t", "Pressure (Pa)", "note"}, table.Columns)
	require.Equal(t, 3, table.Len())

	pressure, err := ResolvePressure(table)
	require.NoError(t, err)
	assert.Equal(t, []float64{101325, 100727, 100129}, pressure)
}

func TestReadTable_SQLiteSpecialCharacters(t *testing.T) {
	assert.Equal(t, "file:/data/log%20%231%3F.db?mode=ro", sqliteDSN("/data/log #1?.db", "ro"))

	path := filepath.Join(t.TempDir(), "uploaded_20250730_210541_log #1?.sdlog")

	db, err := sql.Open("sqlite3", sqliteDSN(path, "rwc"))
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE samples (t INTEGER, pressure_pa REAL);
		INSERT INTO samples VALUES (0, 101325), (1, 100129);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	table, err := ReadTable(path, ReadOptions{PressureColumns: DefaultPressureColumns})
	require.NoError(t, err)

	pressure, err := ResolvePressure(table)
	require.NoError(t, err)
	assert.Equal(t, []float64{101325, 100129}, pressure)
}

func TestReadTable_UnsupportedFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"old.xls", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		_, err := ReadTable(path, ReadOptions{})
		assert.Error(t, err, name)
	}
}
