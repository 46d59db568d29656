// ABOUTME: SQLite fixture of the WordPress tables entrydesk reads
// ABOUTME: Used by tests across packages to seed forms, entries, and plugin state

// Package wptest builds a throwaway WordPress database for tests.
package wptest

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/entrydesk/internal/wordpress"
)

// Prefix is the table prefix used by the fixture.
const Prefix = "wp_"

// ActivePlugins is a serialized active_plugins value with WPForms Pro enabled.
const ActivePlugins = `a:2:{i:0;s:19:"akismet/akismet.php";i:1;s:19:"wpforms/wpforms.php";}`

const schema = `
	CREATE TABLE wp_options (
		option_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		option_name  TEXT NOT NULL UNIQUE,
		option_value TEXT NOT NULL,
		autoload     TEXT NOT NULL DEFAULT 'yes'
	);

	CREATE TABLE wp_posts (
		ID          INTEGER PRIMARY KEY AUTOINCREMENT,
		post_title  TEXT NOT NULL,
		post_type   TEXT NOT NULL DEFAULT 'post',
		post_status TEXT NOT NULL DEFAULT 'publish'
	);

	CREATE TABLE wp_wpforms_entries (
		entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
		form_id  INTEGER NOT NULL,
		status   TEXT NOT NULL DEFAULT '',
		fields   TEXT,
		date     TEXT NOT NULL
	);
`

// Fixture is a seeded WordPress database.
type Fixture struct {
	t  *testing.T
	DB *sql.DB
	// DSN opens the same database with the sqlite driver.
	DSN string
}

// New creates an empty fixture in a temp directory. The database is closed
// when the test ends.
func New(t *testing.T) *Fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "wordpress.db")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("opening fixture database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating fixture schema: %v", err)
	}

	return &Fixture{t: t, DB: db, DSN: dsn}
}

// Reader wraps the fixture in a wordpress.DB using the default plugin file.
func (f *Fixture) Reader() *wordpress.DB {
	f.t.Helper()

	w, err := wordpress.New(f.DB, wordpress.Options{
		TablePrefix: Prefix,
		PluginFiles: []string{"wpforms/wpforms.php"},
	})
	if err != nil {
		f.t.Fatalf("wrapping fixture: %v", err)
	}
	return w
}

// ActivateWPForms marks WPForms as an active plugin.
func (f *Fixture) ActivateWPForms() {
	f.SetActivePlugins(ActivePlugins)
}

// SetActivePlugins stores a raw active_plugins option value.
func (f *Fixture) SetActivePlugins(serialized string) {
	f.t.Helper()

	_, err := f.DB.Exec(`
		INSERT INTO wp_options (option_name, option_value) VALUES ('active_plugins', ?)
		ON CONFLICT(option_name) DO UPDATE SET option_value = excluded.option_value
	`, serialized)
	if err != nil {
		f.t.Fatalf("setting active_plugins: %v", err)
	}
}

// AddForm inserts a wpforms post and returns its ID.
func (f *Fixture) AddForm(title string) int64 {
	f.t.Helper()

	res, err := f.DB.Exec(`INSERT INTO wp_posts (post_title, post_type) VALUES (?, 'wpforms')`, title)
	if err != nil {
		f.t.Fatalf("inserting form: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		f.t.Fatalf("form id: %v", err)
	}
	return id
}

// AddEntry inserts an entry for formID with the given name/value pairs, in
// order, and returns its ID.
func (f *Fixture) AddEntry(formID int64, date time.Time, fields ...wordpress.Field) int64 {
	f.t.Helper()

	res, err := f.DB.Exec(`INSERT INTO wp_wpforms_entries (form_id, fields, date) VALUES (?, ?, ?)`,
		formID, FieldsJSON(fields...), date.UTC().Format(wordpress.DateLayout))
	if err != nil {
		f.t.Fatalf("inserting entry: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		f.t.Fatalf("entry id: %v", err)
	}
	return id
}

// FieldsJSON encodes fields the way WPForms stores them, keyed by field ID.
// Keys are written in order so the document preserves field order.
func FieldsJSON(fields ...wordpress.Field) string {
	buf := []byte{'{'}
	for i, fld := range fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		id := strconv.Itoa(i + 1)
		obj, _ := json.Marshal(map[string]string{
			"id":    id,
			"name":  fld.Name,
			"value": fld.Value,
			"type":  "text",
		})
		buf = append(buf, fmt.Sprintf("%q:", id)...)
		buf = append(buf, obj...)
	}
	return string(append(buf, '}'))
}
