// Package config handles configuration loading for entrydesk.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ENTRYDESK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/entrydesk/config.yaml
//  3. ~/.config/entrydesk/config.yaml
//
// # Environment Variables
//
// Values can reference environment variables, which are expanded before the
// YAML is parsed:
//
//	wordpress:
//	  dsn: "${WP_DB_USER}:${WP_DB_PASSWORD}@tcp(localhost:3306)/wordpress"
//
// A small set of ENTRYDESK_* variables override file values after parsing
// (ENTRYDESK_HTTP_ADDR, ENTRYDESK_DB_PATH, ENTRYDESK_WP_DRIVER, ENTRYDESK_WP_DSN,
// ENTRYDESK_WP_TABLE_PREFIX, ENTRYDESK_WP_ADMIN_URL, ENTRYDESK_JWT_SECRET,
// ENTRYDESK_EXPORT_DIR, ENTRYDESK_LOG_LEVEL).
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:8090"
//
//	database:
//	  path: "/var/lib/entrydesk/entrydesk.db"
//
//	wordpress:
//	  driver: "mysql"                # mysql, sqlite
//	  dsn: "wp:secret@tcp(db:3306)/wordpress"
//	  table_prefix: "wp_"
//	  admin_url: "https://example.com/wp-admin/"
//	  plugin_files: ["wpforms/wpforms.php"]
//
//	auth:
//	  jwt_secret: "${ENTRYDESK_JWT_SECRET}"
//	  session_ttl: "168h"
//
//	export:
//	  dir: "/tmp/entrydesk"
//	  capability: "manage_options"
//	  viewer_capability: "manage_options"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
