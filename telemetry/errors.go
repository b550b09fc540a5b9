package telemetry

import (
	"fmt"
	"strings"
)

// SchemaError reports that no recognised pressure column exists in the table
type SchemaError struct {
	Wanted    []string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("pressure column not found (looked for %s; available: %s)",
		quoteList(e.Wanted), quoteList(e.Available))
}

// AllMissingError reports that not a single pressure value could be parsed
type AllMissingError struct {
	Column string
	Rows   int
}

func (e *AllMissingError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("no valid pressure values in %d samples", e.Rows)
	}
	return fmt.Sprintf("no valid pressure values in column %q (%d rows)", e.Column, e.Rows)
}

func quoteList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
