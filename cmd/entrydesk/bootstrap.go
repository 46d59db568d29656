// ABOUTME: First-run commands: interactive config creation and the first admin account
// ABOUTME: bootstrap writes a config with a random JWT secret when none exists

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/2389/entrydesk/internal/auth"
	"github.com/2389/entrydesk/internal/config"
	"github.com/2389/entrydesk/internal/store"
)

const configTemplate = `# entrydesk configuration
# Generated by entrydesk %s

server:
  http_addr: %q

database:
  path: %q

wordpress:
  driver: %q
  dsn: "${ENTRYDESK_WP_DSN}"
  table_prefix: %q
  admin_url: %q

auth:
  jwt_secret: %q
  session_ttl: "168h"

export:
  dir: %q
  capability: "manage_options"

logging:
  level: %q
  format: %q
`

type configValues struct {
	HTTPAddr    string
	DBPath      string
	Driver      string
	TablePrefix string
	AdminURL    string
	JWTSecret   string
	ExportDir   string
	LogLevel    string
	LogFormat   string
}

func (v configValues) render(generatedBy string) string {
	return fmt.Sprintf(configTemplate, generatedBy,
		v.HTTPAddr, v.DBPath, v.Driver, v.TablePrefix, v.AdminURL,
		v.JWTSecret, v.ExportDir, v.LogLevel, v.LogFormat)
}

func defaultConfigValues() configValues {
	dataPath := getDataPath()
	return configValues{
		HTTPAddr:    "localhost:8080",
		DBPath:      filepath.Join(dataPath, "entrydesk.db"),
		Driver:      "mysql",
		TablePrefix: config.DefaultTablePrefix,
		AdminURL:    "https://example.com/wp-admin/",
		ExportDir:   filepath.Join(dataPath, "exports"),
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func generateJWTSecret() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secretBytes), nil
}

// runBootstrap creates the first administrator account, writing a config
// with a random JWT secret first if none exists. The password is generated
// unless --password is given.
//
//	entrydesk bootstrap --username admin
func runBootstrap(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	username := fset.String("username", "", "administrator username (required)")
	displayName := fset.String("display-name", "", "display name (defaults to the username)")
	password := fset.String("password", "", "password (generated when empty)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}

	*username = strings.TrimSpace(*username)
	if *username == "" {
		return fmt.Errorf("--username flag is required")
	}
	if msg := auth.ValidateUsername(*username); msg != "" {
		return fmt.Errorf("invalid username: %s", msg)
	}
	if *displayName == "" {
		*displayName = *username
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		values := defaultConfigValues()
		values.JWTSecret, err = generateJWTSecret()
		if err != nil {
			return err
		}
		if err := writeConfig(configPath, values.render("bootstrap"), 0600); err != nil {
			return err
		}
		green.Printf("  ✓ Created config: %s\n", configPath)
		yellow.Println("    Set ENTRYDESK_WP_DSN and wordpress.admin_url before serving.")
	} else {
		cyan.Printf("  Using existing config: %s\n", configPath)
	}

	// The WordPress section may still be unfilled, so only the state database
	// path is needed here.
	s, dbPath, err := openStateStore()
	if err != nil {
		return err
	}
	defer s.Close()

	green.Printf("  ✓ Database: %s\n", dbPath)

	count, err := s.CountAdminUsers(ctx)
	if err != nil {
		return fmt.Errorf("checking admin users: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("bootstrap already complete: %d account(s) exist", count)
	}

	user, generated, err := newAdminUser(*username, *displayName, *password, store.RoleAdministrator)
	if err != nil {
		return err
	}
	if err := s.CreateAdminUser(ctx, user); err != nil {
		return fmt.Errorf("creating administrator: %w", err)
	}

	fmt.Println()
	green.Println("  Bootstrap complete!")
	fmt.Println()
	cyan.Println("  Administrator")
	cyan.Println("  -------------")
	fmt.Printf("  ID:           %s\n", user.ID)
	fmt.Printf("  Username:     %s\n", user.Username)
	fmt.Printf("  Display Name: %s\n", user.DisplayName)
	fmt.Printf("  Role:         %s\n", user.Role)
	if generated != "" {
		fmt.Printf("  Password:     %s\n", generated)
		yellow.Println("  Store this password now. It is not shown again.")
	}
	fmt.Println()

	yellow.Println("  Ready to go:")
	fmt.Println("    entrydesk serve    # start the admin server")
	fmt.Println()

	return nil
}

// newAdminUser builds an account with a hashed password. When password is
// empty one is generated and returned so it can be shown once.
func newAdminUser(username, displayName, password string, role store.Role) (*store.AdminUser, string, error) {
	generated := ""
	if password == "" {
		var err error
		password, err = auth.GeneratePassword(18)
		if err != nil {
			return nil, "", err
		}
		generated = password
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	if displayName == "" {
		displayName = username
	}

	return &store.AdminUser{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, generated, nil
}

// openStateStore opens the state database named by the config file.
func openStateStore() (*store.SQLiteStore, string, error) {
	dbPath, err := stateDBPath(getConfigPath())
	if err != nil {
		return nil, "", err
	}
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}
	return s, dbPath, nil
}

// stateDBPath reads database.path from the config file without validating
// the rest of it.
func stateDBPath(configPath string) (string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("reading config file: %w", err)
	}
	path, err := config.DatabasePath(data)
	if err != nil {
		return "", err
	}
	if path == "" {
		return filepath.Join(getDataPath(), "entrydesk.db"), nil
	}
	return path, nil
}

func writeConfig(path, content string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func runInit() error {
	return initConfig(bufio.NewReader(os.Stdin), os.Stdout)
}

func initConfig(reader *bufio.Reader, out io.Writer) error {
	fmt.Fprintln(out, "entrydesk configuration setup")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)

	values := defaultConfigValues()

	outputFile := prompt(reader, out, "Config file path", getConfigPath())
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := strings.ToLower(prompt(reader, out, "File exists. Overwrite?", "no"))
		if overwrite != "yes" && overwrite != "y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	fmt.Fprintln(out, "\n--- Server Configuration ---")
	values.HTTPAddr = prompt(reader, out, "HTTP address", values.HTTPAddr)
	values.DBPath = prompt(reader, out, "State database path", values.DBPath)

	fmt.Fprintln(out, "\n--- WordPress Configuration ---")
	values.Driver = prompt(reader, out, "Database driver (mysql/sqlite)", values.Driver)
	values.TablePrefix = prompt(reader, out, "Table prefix", values.TablePrefix)
	values.AdminURL = prompt(reader, out, "wp-admin URL", values.AdminURL)

	fmt.Fprintln(out, "\n--- Export Configuration ---")
	values.ExportDir = prompt(reader, out, "Export staging directory", values.ExportDir)

	fmt.Fprintln(out, "\n--- Logging Configuration ---")
	values.LogLevel = prompt(reader, out, "Log level (debug/info/warn/error)", values.LogLevel)
	values.LogFormat = prompt(reader, out, "Log format (text/json)", values.LogFormat)

	secret, err := generateJWTSecret()
	if err != nil {
		return err
	}
	values.JWTSecret = secret

	if err := writeConfig(outputFile, values.render("init"), 0600); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(values.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintln(out, "The WordPress DSN is read from ENTRYDESK_WP_DSN, e.g. in a .env file:")
	fmt.Fprintln(out, "  ENTRYDESK_WP_DSN=wp:secret@tcp(localhost:3306)/wordpress?parseTime=false")
	fmt.Fprintln(out, "\nNext:")
	fmt.Fprintln(out, "  entrydesk bootstrap --username admin")
	fmt.Fprintln(out, "  entrydesk serve")

	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
