// Package store provides the entrydesk state database using SQLite.
//
// The WordPress database is never written to; everything entrydesk owns lives
// here instead:
//
//   - AdminStore: accounts that can sign in to the web UI, each with a
//     WordPress-style role (administrator, editor, subscriber)
//   - ExportLog: an audit trail of CSV/XLSX exports
//
// SQLiteStore implements both interfaces in a single struct. The schema is
// created on open, WAL mode is enabled, and timestamps are stored as RFC 3339
// text in UTC.
//
// Sentinel errors (ErrAdminUserNotFound, ErrUsernameExists, ErrInvalidRole) are
// returned unwrapped so callers can compare them with errors.Is.
package store
