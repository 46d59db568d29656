// Package server assembles entrydesk from its parts.
//
// New opens the SQLite state store and the WordPress database, creates the
// export stager and session token issuer, and mounts the admin UI on an
// http.ServeMux. Run serves it until the context is canceled, then shuts the
// HTTP server down and closes both databases.
package server
