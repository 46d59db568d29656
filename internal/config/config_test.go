// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, env overrides, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `
server:
  http_addr: "127.0.0.1:8090"

database:
  path: "./entrydesk.db"

wordpress:
  driver: "mysql"
  dsn: "wp:secret@tcp(localhost:3306)/wordpress"
  table_prefix: "site_"
  admin_url: "https://example.com/wp-admin"
  plugin_files:
    - "wpforms/wpforms.php"
    - "wpforms-lite/wpforms.php"

auth:
  jwt_secret: "a-very-long-secret-value-for-tests!!"
  session_ttl: "12h"

export:
  dir: "/tmp/exports"
  capability: "export"

logging:
  level: "debug"
  format: "json"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:8090" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:8090")
	}
	if cfg.Database.Path != "./entrydesk.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./entrydesk.db")
	}
	if cfg.WordPress.TablePrefix != "site_" {
		t.Errorf("WordPress.TablePrefix = %q, want %q", cfg.WordPress.TablePrefix, "site_")
	}
	// trailing slash is added so relative admin paths join cleanly
	if cfg.WordPress.AdminURL != "https://example.com/wp-admin/" {
		t.Errorf("WordPress.AdminURL = %q, want trailing slash", cfg.WordPress.AdminURL)
	}
	if len(cfg.WordPress.PluginFiles) != 2 {
		t.Errorf("WordPress.PluginFiles len = %d, want 2", len(cfg.WordPress.PluginFiles))
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want %v", cfg.Auth.SessionTTL, 12*time.Hour)
	}
	if cfg.Export.Capability != "export" {
		t.Errorf("Export.Capability = %q, want %q", cfg.Export.Capability, "export")
	}
	if cfg.Export.ViewerCapability != "export" {
		t.Errorf("Export.ViewerCapability = %q, want it to follow Export.Capability", cfg.Export.ViewerCapability)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
server:
  http_addr: "127.0.0.1:8090"
database:
  path: "./entrydesk.db"
wordpress:
  dsn: "wp:secret@tcp(localhost:3306)/wordpress"
  admin_url: "https://example.com/wp-admin/"
auth:
  jwt_secret: "a-very-long-secret-value-for-tests!!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WordPress.Driver != "mysql" {
		t.Errorf("WordPress.Driver = %q, want mysql", cfg.WordPress.Driver)
	}
	if cfg.WordPress.TablePrefix != DefaultTablePrefix {
		t.Errorf("WordPress.TablePrefix = %q, want %q", cfg.WordPress.TablePrefix, DefaultTablePrefix)
	}
	if len(cfg.WordPress.PluginFiles) != 1 || cfg.WordPress.PluginFiles[0] != DefaultPluginFile {
		t.Errorf("WordPress.PluginFiles = %v, want [%s]", cfg.WordPress.PluginFiles, DefaultPluginFile)
	}
	if cfg.Auth.SessionTTL != DefaultSessionTTL {
		t.Errorf("Auth.SessionTTL = %v, want %v", cfg.Auth.SessionTTL, DefaultSessionTTL)
	}
	if cfg.Export.Dir != os.TempDir() {
		t.Errorf("Export.Dir = %q, want %q", cfg.Export.Dir, os.TempDir())
	}
	if cfg.Export.Capability != DefaultExportCapability {
		t.Errorf("Export.Capability = %q, want %q", cfg.Export.Capability, DefaultExportCapability)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_WP_USER", "wpuser")
	t.Setenv("TEST_WP_PASSWORD", "hunter2")

	content := strings.Replace(validConfig,
		`dsn: "wp:secret@tcp(localhost:3306)/wordpress"`,
		`dsn: "${TEST_WP_USER}:${TEST_WP_PASSWORD}@tcp(localhost:3306)/wordpress"`, 1)

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := "wpuser:hunter2@tcp(localhost:3306)/wordpress"
	if cfg.WordPress.DSN != want {
		t.Errorf("WordPress.DSN = %q, want %q", cfg.WordPress.DSN, want)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENTRYDESK_HTTP_ADDR", "0.0.0.0:9999")
	t.Setenv("ENTRYDESK_WP_DRIVER", "sqlite")
	t.Setenv("ENTRYDESK_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:9999" {
		t.Errorf("Server.HTTPAddr = %q, want override", cfg.Server.HTTPAddr)
	}
	if cfg.WordPress.Driver != "sqlite" {
		t.Errorf("WordPress.Driver = %q, want override", cfg.WordPress.Driver)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want override", cfg.Logging.Level)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	content := strings.Replace(validConfig, `session_ttl: "12h"`, `session_ttl: "soon"`, 1)

	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "session_ttl") {
		t.Errorf("error = %v, want mention of session_ttl", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing http addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"bad driver", func(c *Config) { c.WordPress.Driver = "postgres" }, "wordpress.driver"},
		{"missing dsn", func(c *Config) { c.WordPress.DSN = "" }, "wordpress.dsn"},
		{"missing admin url", func(c *Config) { c.WordPress.AdminURL = "" }, "wordpress.admin_url"},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret"},
		{"unknown export capability", func(c *Config) { c.Export.Capability = "manage-options" }, "export.capability"},
		{"unknown viewer capability", func(c *Config) { c.Export.ViewerCapability = "exports" }, "export.viewer_capability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:    ServerConfig{HTTPAddr: "127.0.0.1:8090"},
				Database:  DatabaseConfig{Path: "x.db"},
				WordPress: WordPressConfig{Driver: "mysql", DSN: "dsn", AdminURL: "https://example.com/wp-admin/"},
				Auth:      AuthConfig{JWTSecret: "secret"},
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("baseline config invalid: %v", err)
			}

			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_KnownCapabilities(t *testing.T) {
	for _, capability := range []string{"read", "manage_options", "export"} {
		cfg := &Config{
			Server:    ServerConfig{HTTPAddr: "127.0.0.1:8090"},
			Database:  DatabaseConfig{Path: "x.db"},
			WordPress: WordPressConfig{Driver: "mysql", DSN: "dsn", AdminURL: "https://example.com/wp-admin/"},
			Auth:      AuthConfig{JWTSecret: "secret"},
			Export:    ExportConfig{Capability: capability, ViewerCapability: capability},
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("capability %q rejected: %v", capability, err)
		}
	}
}

func TestDatabasePath_IgnoresIncompleteSections(t *testing.T) {
	t.Setenv("STATE_DIR", "/var/lib/entrydesk")

	path, err := DatabasePath([]byte(`
database:
  path: "${STATE_DIR}/state.db"
wordpress:
  dsn: ""
`))
	if err != nil {
		t.Fatalf("DatabasePath() error = %v", err)
	}
	if path != "/var/lib/entrydesk/state.db" {
		t.Errorf("DatabasePath() = %q", path)
	}

	t.Setenv("ENTRYDESK_DB_PATH", "/override.db")
	path, err = DatabasePath([]byte("database:\n  path: a.db\n"))
	if err != nil {
		t.Fatalf("DatabasePath() error = %v", err)
	}
	if path != "/override.db" {
		t.Errorf("DatabasePath() = %q, want env override", path)
	}
}
