// ABOUTME: WPForms entry and form queries
// ABOUTME: Entries are joined with form titles; field names and values come from the entry fields JSON

package wordpress

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is how WordPress stores DATETIME columns.
const DateLayout = "2006-01-02 15:04:05"

// Entry is one form submission.
type Entry struct {
	ID        int64
	FormID    int64
	FormTitle string
	Date      time.Time
	Fields    []Field
}

// Field is one named value within a submission.
type Field struct {
	Name  string
	Value string
}

// ValueSeparator joins the values of fields that share a name.
const ValueSeparator = "; "

// Value returns the value of the named field and whether the entry has it.
// Several fields with the same name yield their values joined in order.
func (e *Entry) Value(name string) (string, bool) {
	var values []string
	for _, f := range e.Fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}
	if values == nil {
		return "", false
	}
	return strings.Join(values, ValueSeparator), true
}

// Form is a WPForms form (a wpforms post).
type Form struct {
	ID      int64
	Title   string
	Entries int
}

// Filter narrows entry queries. The zero value selects everything.
type Filter struct {
	FormID int64
}

func (f Filter) where(alias string) (string, []any) {
	if f.FormID == 0 {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %sform_id = ?", alias), []any{f.FormID}
}

// ListEntries returns entries joined with their form titles, newest first.
func (w *DB) ListEntries(ctx context.Context, filter Filter) ([]Entry, error) {
	where, args := filter.where("e.")
	query := fmt.Sprintf(`
		SELECT e.entry_id, e.form_id, e.date, e.fields, p.post_title
		FROM %s e
		LEFT JOIN %s p ON p.ID = e.form_id
		%s
		ORDER BY e.date DESC, e.entry_id DESC
	`, w.table("wpforms_entries"), w.table("posts"), where)

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var date string
		var fields, title sql.NullString

		if err := rows.Scan(&e.ID, &e.FormID, &date, &fields, &title); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		e.Date, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}

		e.FormTitle = title.String
		if !title.Valid {
			e.FormTitle = fmt.Sprintf("Form #%d", e.FormID)
		}
		e.Fields = parseFields(fields.String)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	w.logger.Debug("listed entries", "count", len(entries), "form_id", filter.FormID)
	return entries, nil
}

// FieldNames returns the distinct field names used across all matching
// entries, in the order they first appear (oldest entry first).
func (w *DB) FieldNames(ctx context.Context, filter Filter) ([]string, error) {
	where, args := filter.where("")
	query := fmt.Sprintf(`SELECT fields FROM %s%s ORDER BY entry_id ASC`, w.table("wpforms_entries"), where)

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying field names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]struct{})
	var names []string
	for rows.Next() {
		var fields sql.NullString
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("scanning entry fields: %w", err)
		}

		for _, f := range parseFields(fields.String) {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			names = append(names, f.Name)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry fields: %w", err)
	}

	return names, nil
}

// ListForms returns all WPForms forms with their entry counts, by title.
func (w *DB) ListForms(ctx context.Context) ([]Form, error) {
	query := fmt.Sprintf(`
		SELECT p.ID, p.post_title, COUNT(e.entry_id)
		FROM %s p
		LEFT JOIN %s e ON e.form_id = p.ID
		WHERE p.post_type = 'wpforms'
		GROUP BY p.ID, p.post_title
		ORDER BY p.post_title ASC, p.ID ASC
	`, w.table("posts"), w.table("wpforms_entries"))

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying forms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var forms []Form
	for rows.Next() {
		var f Form
		if err := rows.Scan(&f.ID, &f.Title, &f.Entries); err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		forms = append(forms, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating forms: %w", err)
	}

	return forms, nil
}

// parseDate accepts the WordPress DATETIME layout, and RFC 3339 for drivers
// that hand back time.Time values.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// parseFields reads the entry fields JSON, an object keyed by field ID:
//
//	{"1":{"id":"1","name":"Email","value":"a@b.c","type":"email"}, ...}
//
// Names are trimmed and NFC-normalised. Unnamed fields are labelled by ID.
func parseFields(raw string) []Field {
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}

	var fields []Field
	gjson.Parse(raw).ForEach(func(key, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}

		name := norm.NFC.String(strings.TrimSpace(v.Get("name").String()))
		if name == "" {
			id := v.Get("id").String()
			if id == "" {
				id = key.String()
			}
			name = "Field #" + id
		}

		fields = append(fields, Field{Name: name, Value: v.Get("value").String()})
		return true
	})

	return fields
}
