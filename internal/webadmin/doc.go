// Package webadmin provides the browser-based admin panel.
//
// # Overview
//
// The panel mirrors a slice of the WordPress admin:
//
//   - Menu: pages registered with a title, capability, slug, icon, and
//     position, listed on the dashboard for users who may open them
//   - Entries: a shortcut to the WPForms entries screen and a table of every
//     form submission
//   - Actions: /admin/ajax?action=<name> endpoints, used for CSV and XLSX
//     downloads
//   - Help: markdown pages embedded in the binary
//
// # Authentication
//
// Users sign in with a username and password stored in the state database.
// A signed session token is kept in a cookie; scripts may send the same
// token as a bearer token instead. Forms and action links carry a
// double-submit CSRF token.
//
// # Halts
//
// Conditions that end a request early (WPForms inactive, nothing to export,
// missing capability) render a standalone halt page with an HTTP status.
package webadmin
