// ABOUTME: Builds the entries table shown in the viewer and written to exports
// ABOUTME: Rows are entries, columns are ID, Date, Form, then one per distinct field name

package report

import (
	"context"
	"fmt"
	"strconv"

	"github.com/2389/entrydesk/internal/wordpress"
)

// FixedColumns precede the dynamic field columns in every table.
var FixedColumns = []string{"ID", "Date", "Form"}

// Source supplies entries and the distinct field names across them.
type Source interface {
	ListEntries(ctx context.Context, filter wordpress.Filter) ([]wordpress.Entry, error)
	FieldNames(ctx context.Context, filter wordpress.Filter) ([]string, error)
}

// Table is a rendered view of entries.
type Table struct {
	Fields []string
	Rows   []Row
}

// Row is one entry. Values holds one cell per Table.Fields column, blank
// where the entry has no such field.
type Row struct {
	ID     int64
	Date   string
	Form   string
	Values []string
}

// Load runs both queries against src and builds the table.
func Load(ctx context.Context, src Source, filter wordpress.Filter) (*Table, error) {
	entries, err := src.ListEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}

	names, err := src.FieldNames(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("loading field names: %w", err)
	}

	return Build(entries, names), nil
}

// Build lays entries out against the given field columns.
func Build(entries []wordpress.Entry, fields []string) *Table {
	t := &Table{
		Fields: fields,
		Rows:   make([]Row, 0, len(entries)),
	}

	for i := range entries {
		e := &entries[i]
		values := make([]string, len(fields))
		for j, name := range fields {
			values[j], _ = e.Value(name)
		}

		t.Rows = append(t.Rows, Row{
			ID:     e.ID,
			Date:   e.Date.Format(wordpress.DateLayout),
			Form:   e.FormTitle,
			Values: values,
		})
	}

	return t
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Header returns the full header row.
func (t *Table) Header() []string {
	header := make([]string, 0, len(FixedColumns)+len(t.Fields))
	header = append(header, FixedColumns...)
	return append(header, t.Fields...)
}

// Record returns row i as a flat list of cells matching Header.
func (t *Table) Record(i int) []string {
	r := t.Rows[i]
	rec := make([]string, 0, len(FixedColumns)+len(r.Values))
	rec = append(rec, strconv.FormatInt(r.ID, 10), r.Date, r.Form)
	return append(rec, r.Values...)
}
