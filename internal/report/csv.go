// ABOUTME: CSV serialization of the entries table
// ABOUTME: Header row is ID, Date, Form, then the dynamic field names; formula-like cells are neutralised

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// formulaPrefixes are the leading characters spreadsheet apps treat as the
// start of a formula.
const formulaPrefixes = "=+-@\t\r"

// WriteCSV writes the header row followed by one record per row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(escapeFormulas(t.Header())); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i := range t.Rows {
		if err := cw.Write(escapeFormulas(t.Record(i))); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// escapeFormulas prefixes formula-like cells with a single quote so
// spreadsheet apps show them as text. The cells are modified in place.
func escapeFormulas(cells []string) []string {
	for i, c := range cells {
		if c != "" && strings.IndexByte(formulaPrefixes, c[0]) >= 0 {
			cells[i] = "'" + c
		}
	}
	return cells
}
