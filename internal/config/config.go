// ABOUTME: Configuration loading and parsing for entrydesk
// ABOUTME: Supports YAML files with environment variable expansion, env overrides, and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/2389/entrydesk/internal/auth"
)

// Defaults applied when the config file leaves a field empty.
const (
	DefaultTablePrefix      = "wp_"
	DefaultPluginFile       = "wpforms/wpforms.php"
	DefaultExportCapability = "manage_options"
	DefaultSessionTTL       = 7 * 24 * time.Hour
)

// Config represents the complete entrydesk configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	WordPress WordPressConfig `yaml:"wordpress"`
	Auth      AuthConfig      `yaml:"auth"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
	WebAdmin  WebAdminConfig  `yaml:"webadmin"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" env:"ENTRYDESK_HTTP_ADDR"`
}

// DatabaseConfig holds the entrydesk state database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" env:"ENTRYDESK_DB_PATH"`
}

// WordPressConfig describes how to reach the WordPress database that holds
// the WPForms tables.
type WordPressConfig struct {
	Driver      string   `yaml:"driver" env:"ENTRYDESK_WP_DRIVER"` // mysql or sqlite
	DSN         string   `yaml:"dsn" env:"ENTRYDESK_WP_DSN"`
	TablePrefix string   `yaml:"table_prefix" env:"ENTRYDESK_WP_TABLE_PREFIX"`
	AdminURL    string   `yaml:"admin_url" env:"ENTRYDESK_WP_ADMIN_URL"` // e.g. https://example.com/wp-admin/
	PluginFiles []string `yaml:"plugin_files"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"ENTRYDESK_JWT_SECRET"`
	SessionTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	SessionTTLRaw string `yaml:"session_ttl"`
}

// ExportConfig controls where export files are staged and who may produce them
type ExportConfig struct {
	Dir              string `yaml:"dir" env:"ENTRYDESK_EXPORT_DIR"`
	Capability       string `yaml:"capability"`
	ViewerCapability string `yaml:"viewer_capability"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"ENTRYDESK_LOG_LEVEL"`
	Format string `yaml:"format"`
}

// WebAdminConfig holds web admin UI configuration
type WebAdminConfig struct {
	// BaseURL is the external URL for the admin UI, printed by the CLI
	BaseURL string `yaml:"base_url"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded, ENTRYDESK_*
// variables override file values, and duration strings are parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from raw YAML bytes.
func Parse(data []byte) (*Config, error) {
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// DatabasePath extracts database.path from raw YAML, honouring ${VAR}
// expansion and ENTRYDESK_DB_PATH, without requiring the rest of the file to
// be valid. Used before the WordPress section has been filled in.
func DatabasePath(data []byte) (string, error) {
	var partial struct {
		Database DatabaseConfig `yaml:"database"`
	}
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &partial); err != nil {
		return "", fmt.Errorf("parsing config file: %w", err)
	}
	if err := env.Parse(&partial.Database); err != nil {
		return "", fmt.Errorf("applying environment overrides: %w", err)
	}
	return partial.Database.Path, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.WordPress.Driver == "" {
		c.WordPress.Driver = "mysql"
	}
	if c.WordPress.TablePrefix == "" {
		c.WordPress.TablePrefix = DefaultTablePrefix
	}
	if len(c.WordPress.PluginFiles) == 0 {
		c.WordPress.PluginFiles = []string{DefaultPluginFile}
	}
	if c.WordPress.AdminURL != "" && !strings.HasSuffix(c.WordPress.AdminURL, "/") {
		c.WordPress.AdminURL += "/"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = DefaultSessionTTL
	}
	if c.Export.Dir == "" {
		c.Export.Dir = os.TempDir()
	}
	if c.Export.Capability == "" {
		c.Export.Capability = DefaultExportCapability
	}
	if c.Export.ViewerCapability == "" {
		c.Export.ViewerCapability = c.Export.Capability
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.WordPress.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("wordpress.driver must be mysql or sqlite, got %q", c.WordPress.Driver)
	}

	if c.WordPress.DSN == "" {
		return fmt.Errorf("wordpress.dsn is required")
	}

	if c.WordPress.AdminURL == "" {
		return fmt.Errorf("wordpress.admin_url is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	// Empty means the default, applied on load
	if c.Export.Capability != "" && !auth.KnownCapability(auth.Capability(c.Export.Capability)) {
		return fmt.Errorf("export.capability %q is not a known capability", c.Export.Capability)
	}
	if c.Export.ViewerCapability != "" && !auth.KnownCapability(auth.Capability(c.Export.ViewerCapability)) {
		return fmt.Errorf("export.viewer_capability %q is not a known capability", c.Export.ViewerCapability)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Auth.SessionTTLRaw != "" {
		d, err := time.ParseDuration(cfg.Auth.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Auth.SessionTTLRaw, err)
		}
		cfg.Auth.SessionTTL = d
	}

	return nil
}
