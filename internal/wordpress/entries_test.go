// ABOUTME: Tests for WPForms entry, field name, form, and plugin queries
// ABOUTME: Runs against the SQLite WordPress fixture

package wordpress_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/entrydesk/internal/wordpress"
	"github.com/2389/entrydesk/internal/wordpress/wptest"
)

func f(name, value string) wordpress.Field {
	return wordpress.Field{Name: name, Value: value}
}

func TestListEntries_JoinsFormTitles(t *testing.T) {
	fx := wptest.New(t)
	contact := fx.AddForm("Contact Us")
	survey := fx.AddForm("Survey")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	e1 := fx.AddEntry(contact, base, f("Name", "Ada"), f("Email", "ada@example.com"))
	e2 := fx.AddEntry(survey, base.Add(time.Hour), f("Rating", "5"))

	entries, err := fx.Reader().ListEntries(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, e2, entries[0].ID)
	assert.Equal(t, "Survey", entries[0].FormTitle)
	assert.Equal(t, e1, entries[1].ID)
	assert.Equal(t, "Contact Us", entries[1].FormTitle)
	assert.True(t, entries[1].Date.Equal(base))

	v, ok := entries[1].Value("Email")
	assert.True(t, ok)
	assert.Equal(t, "ada@example.com", v)

	_, ok = entries[0].Value("Email")
	assert.False(t, ok)
}

func TestEntryValue_JoinsRepeatedNames(t *testing.T) {
	fx := wptest.New(t)
	form := fx.AddForm("Team")
	fx.AddEntry(form, time.Now(), f("Name", "Alice"), f("Email", "a@example.com"), f("Name", "Bob"))

	entries, err := fx.Reader().ListEntries(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	v, ok := entries[0].Value("Name")
	assert.True(t, ok)
	assert.Equal(t, "Alice; Bob", v)

	names, err := fx.Reader().FieldNames(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email"}, names, "still one column per name")
}

func TestListEntries_DeletedForm(t *testing.T) {
	fx := wptest.New(t)
	fx.AddEntry(42, time.Now(), f("Name", "Orphan"))

	entries, err := fx.Reader().ListEntries(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Form #42", entries[0].FormTitle)
}

func TestListEntries_FilterByForm(t *testing.T) {
	fx := wptest.New(t)
	a := fx.AddForm("A")
	b := fx.AddForm("B")
	fx.AddEntry(a, time.Now(), f("X", "1"))
	fx.AddEntry(b, time.Now(), f("Y", "2"))
	fx.AddEntry(b, time.Now(), f("Z", "3"))

	w := fx.Reader()
	entries, err := w.ListEntries(context.Background(), wordpress.Filter{FormID: b})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	names, err := w.FieldNames(context.Background(), wordpress.Filter{FormID: b})
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "Z"}, names)
}

func TestListEntries_Empty(t *testing.T) {
	fx := wptest.New(t)

	entries, err := fx.Reader().ListEntries(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFieldNames_DistinctInFirstSeenOrder(t *testing.T) {
	fx := wptest.New(t)
	form := fx.AddForm("Contact")
	now := time.Now()
	fx.AddEntry(form, now, f("Name", "a"), f("Email", "a@x"))
	fx.AddEntry(form, now, f("Email", "b@x"), f("Phone", "555"))
	fx.AddEntry(form, now, f("Name", "c"), f("Message", "hi"))

	names, err := fx.Reader().FieldNames(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email", "Phone", "Message"}, names)
}

func TestFieldNames_NormalisesUnicode(t *testing.T) {
	fx := wptest.New(t)
	form := fx.AddForm("Café form")
	// "Café" precomposed and decomposed, plus stray whitespace
	fx.AddEntry(form, time.Now(), f("Café", "1"))
	fx.AddEntry(form, time.Now(), f(" Cafe\u0301 ", "2"))

	names, err := fx.Reader().FieldNames(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Café"}, names)
}

func TestFieldNames_SkipsBrokenJSON(t *testing.T) {
	fx := wptest.New(t)
	_, err := fx.DB.Exec(`INSERT INTO wp_wpforms_entries (form_id, fields, date) VALUES (1, '{not json', '2024-01-01 00:00:00')`)
	require.NoError(t, err)
	_, err = fx.DB.Exec(`INSERT INTO wp_wpforms_entries (form_id, fields, date) VALUES (1, NULL, '2024-01-01 00:00:00')`)
	require.NoError(t, err)

	names, err := fx.Reader().FieldNames(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFieldNames_UnnamedFieldUsesID(t *testing.T) {
	fx := wptest.New(t)
	_, err := fx.DB.Exec(`INSERT INTO wp_wpforms_entries (form_id, fields, date) VALUES (1, ?, '2024-01-01 00:00:00')`,
		`{"7":{"id":"7","name":"","value":"x"}}`)
	require.NoError(t, err)

	names, err := fx.Reader().FieldNames(context.Background(), wordpress.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Field #7"}, names)
}

func TestListForms(t *testing.T) {
	fx := wptest.New(t)
	b := fx.AddForm("Beta")
	fx.AddForm("Alpha")
	fx.AddEntry(b, time.Now(), f("X", "1"))
	fx.AddEntry(b, time.Now(), f("X", "2"))

	forms, err := fx.Reader().ListForms(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "Alpha", forms[0].Title)
	assert.Equal(t, 0, forms[0].Entries)
	assert.Equal(t, "Beta", forms[1].Title)
	assert.Equal(t, 2, forms[1].Entries)
}

func TestPluginActive(t *testing.T) {
	fx := wptest.New(t)
	w := fx.Reader()
	ctx := context.Background()

	active, err := w.PluginActive(ctx)
	require.NoError(t, err)
	assert.False(t, active, "no active_plugins option")

	fx.SetActivePlugins(`a:1:{i:0;s:19:"akismet/akismet.php";}`)
	active, err = w.PluginActive(ctx)
	require.NoError(t, err)
	assert.False(t, active)

	fx.SetActivePlugins(`a:1:{i:0;s:24:"not-wpforms/wpforms.php";}`)
	active, err = w.PluginActive(ctx)
	require.NoError(t, err)
	assert.False(t, active, "suffix match must not count")

	fx.ActivateWPForms()
	active, err = w.PluginActive(ctx)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestNew_RejectsUnsafePrefix(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = wordpress.New(db, wordpress.Options{TablePrefix: "wp_; DROP TABLE x; --"})
	assert.ErrorIs(t, err, wordpress.ErrInvalidPrefix)
}
