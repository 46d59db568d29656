// ABOUTME: Detects whether the WPForms plugin is active
// ABOUTME: Reads the serialized active_plugins option from the options table

package wordpress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PluginActive reports whether any configured WPForms plugin file appears in
// the active_plugins option.
func (w *DB) PluginActive(ctx context.Context) (bool, error) {
	query := fmt.Sprintf(`SELECT option_value FROM %s WHERE option_name = 'active_plugins'`, w.table("options"))

	var value sql.NullString
	err := w.db.QueryRowContext(ctx, query).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading active_plugins: %w", err)
	}

	return activePluginsContain(value.String, w.pluginFiles), nil
}

// activePluginsContain checks a PHP-serialized array such as
// a:1:{i:0;s:19:"wpforms/wpforms.php";} for any of files. Entries are matched
// with their surrounding quotes so "wpforms/wpforms.php" does not match a
// longer path that merely ends with it.
func activePluginsContain(serialized string, files []string) bool {
	for _, f := range files {
		if f != "" && strings.Contains(serialized, `"`+f+`"`) {
			return true
		}
	}
	return false
}
