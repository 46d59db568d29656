// ABOUTME: Read-only access to the WordPress database that holds WPForms data
// ABOUTME: Opens MySQL in production or SQLite for local copies and tests

package wordpress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// ErrInvalidPrefix is returned when a table prefix contains characters that
// are not allowed in an unquoted MySQL identifier.
var ErrInvalidPrefix = errors.New("invalid table prefix")

var prefixRegex = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Options configures a DB.
type Options struct {
	// TablePrefix is $table_prefix from wp-config.php, usually "wp_".
	TablePrefix string
	// PluginFiles are the plugin entry files that count as WPForms being active.
	PluginFiles []string
}

// DB reads WPForms entries, forms and plugin state from a WordPress database.
type DB struct {
	db          *sql.DB
	prefix      string
	pluginFiles []string
	logger      *slog.Logger
}

// Open connects to the WordPress database with the given driver ("mysql" or
// "sqlite") and verifies the connection.
func Open(ctx context.Context, driver, dsn string, opts Options) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening wordpress database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to wordpress database: %w", err)
	}

	w, err := New(db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}

	w.logger.Info("wordpress database connected", "driver", driver, "prefix", w.prefix)
	return w, nil
}

// New wraps an existing connection.
func New(db *sql.DB, opts Options) (*DB, error) {
	if !prefixRegex.MatchString(opts.TablePrefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, opts.TablePrefix)
	}

	return &DB{
		db:          db,
		prefix:      opts.TablePrefix,
		pluginFiles: opts.PluginFiles,
		logger:      slog.Default().With("component", "wordpress"),
	}, nil
}

// Ping checks the connection.
func (w *DB) Ping(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

// Close closes the underlying connection.
func (w *DB) Close() error {
	return w.db.Close()
}

func (w *DB) table(name string) string {
	return w.prefix + name
}
