package telemetry

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// readSQLite reads one table of a SQLite flight log. Without an explicit table
// name the first table carrying a pressure column is used, falling back to the
// first table in the file.
func readSQLite(path string, opts ReadOptions) (*Table, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(path, "ro"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	name := opts.Table
	if name == "" {
		name, err = findPressureTable(db, opts.PressureColumns)
		if err != nil {
			return nil, err
		}
	}

	rows, err := db.Query("SELECT * FROM " + quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %q: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %q: %w", name, err)
	}

	table := &Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", name, err)
	}

	return table, nil
}

func findPressureTable(db *sql.DB, labels []string) (string, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid")
	if err != nil {
		return "", fmt.Errorf("failed to list tables: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return "", fmt.Errorf("failed to list tables: %w", err)
		}
		tables = append(tables, name)
	}
	rows.Close()

	if len(tables) == 0 {
		return "", fmt.Errorf("database contains no tables")
	}

	for _, name := range tables {
		columns, err := tableColumns(db, name)
		if err != nil {
			return "", err
		}
		for _, c := range columns {
			for _, label := range labels {
				if c == label {
					return name, nil
				}
			}
		}
	}

	// Let the resolver report the missing column
	return tables[0], nil
}

func tableColumns(db *sql.DB, name string) ([]string, error) {
	rows, err := db.Query("SELECT * FROM " + quoteIdent(name) + " LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %q: %w", name, err)
	}
	defer rows.Close()
	return rows.Columns()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqliteDSN builds a URI filename with the given open mode. The path is
// escaped so names containing '?' or '#' are not taken for URI query or fragment.
func sqliteDSN(path, mode string) string {
	u := url.URL{Scheme: "file", Opaque: (&url.URL{Path: path}).EscapedPath()}
	if mode != "" {
		u.RawQuery = "mode=" + mode
	}
	return u.String()
}
