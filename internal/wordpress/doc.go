// Package wordpress reads WPForms data from a WordPress database.
//
// Nothing here writes. The tables read are, with the configured prefix:
//
//   - wpforms_entries: one row per submission; the fields column is a JSON
//     object of {id, name, value, type} keyed by field ID
//   - posts: form titles (post_type = 'wpforms')
//   - options: the active_plugins option, used to tell whether WPForms is on
//
// MySQL (github.com/go-sql-driver/mysql) is the production driver. SQLite
// (modernc.org/sqlite) serves local copies and the wptest fixture.
package wordpress
