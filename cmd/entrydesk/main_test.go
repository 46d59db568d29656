// ABOUTME: Tests for CLI helpers: config path resolution, logging, and config generation
// ABOUTME: Runs init against scripted stdin, bootstraps accounts, and manages roles

package main

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/entrydesk/internal/config"
	"github.com/2389/entrydesk/internal/report"
	"github.com/2389/entrydesk/internal/store"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("ENTRYDESK_CONFIG", "/etc/entrydesk.yaml")
	assert.Equal(t, "/etc/entrydesk.yaml", getConfigPath())

	t.Setenv("ENTRYDESK_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "entrydesk", "config.yaml"), getConfigPath())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newColorHandler(&buf, slog.LevelInfo)).With("component", "test")

	logger.Debug("hidden")
	logger.WithGroup("req").Info("handled", "status", 200)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "handled")
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "req.status=")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestInitConfig_WritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("ENTRYDESK_WP_DSN", "wp:secret@tcp(localhost:3306)/wordpress")

	answers := strings.Join([]string{
		configPath,
		"127.0.0.1:9090",
		"",
		"mysql",
		"site_",
		"https://example.com/wp-admin",
		"",
		"warn",
		"json",
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, initConfig(bufio.NewReader(strings.NewReader(answers)), &out))
	assert.Contains(t, out.String(), "Config written to "+configPath)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.HTTPAddr)
	assert.Equal(t, "site_", cfg.WordPress.TablePrefix)
	assert.Equal(t, "https://example.com/wp-admin/", cfg.WordPress.AdminURL)
	assert.Equal(t, filepath.Join(dir, "entrydesk", "entrydesk.db"), cfg.Database.Path)
	assert.Len(t, cfg.Auth.JWTSecret, 44)
}

func TestBootstrap_CreatesAdministratorOnce(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENTRYDESK_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("XDG_DATA_HOME", dir)

	ctx := context.Background()
	require.NoError(t, runBootstrap(ctx, []string{"--username", "admin", "--password", "correct-horse"}))

	dbPath, err := stateDBPath(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	err = runBootstrap(ctx, []string{"--username", "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already complete")
}

func TestBootstrap_RequiresUsername(t *testing.T) {
	t.Setenv("ENTRYDESK_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	err := runBootstrap(context.Background(), nil)
	assert.ErrorContains(t, err, "--username")
}

func TestWriteExportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entries.csv")
	table := &report.Table{
		Fields: []string{"Name"},
		Rows:   []report.Row{{ID: 1, Date: "2024-01-01 00:00:00", Form: "Contact", Values: []string{"Ada"}}},
	}

	require.NoError(t, writeExportFile(path, report.FormatCSV, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,Date,Form,Name\n1,2024-01-01 00:00:00,Contact,Ada\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func setupAccounts(t *testing.T) context.Context {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("ENTRYDESK_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("XDG_DATA_HOME", dir)

	ctx := context.Background()
	require.NoError(t, runBootstrap(ctx, []string{"--username", "admin", "--password", "correct-horse"}))
	return ctx
}

func accountRole(t *testing.T, username string) store.Role {
	t.Helper()

	s, _, err := openStateStore()
	require.NoError(t, err)
	defer s.Close()

	user, err := s.GetAdminUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return user.Role
}

func TestUserAdd_RolesAndList(t *testing.T) {
	ctx := setupAccounts(t)

	var out bytes.Buffer
	require.NoError(t, userCommand(ctx, []string{"add", "--username", "eddie", "--role", "editor", "--password", "correct-horse"}, &out))
	assert.Contains(t, out.String(), "Created editor eddie")
	assert.NotContains(t, out.String(), "Password:")

	out.Reset()
	require.NoError(t, userCommand(ctx, []string{"add", "--username", "subby"}, &out))
	assert.Contains(t, out.String(), "Created subscriber subby")
	assert.Contains(t, out.String(), "Password:", "generated password is shown once")

	assert.Equal(t, store.RoleEditor, accountRole(t, "eddie"))
	assert.Equal(t, store.RoleSubscriber, accountRole(t, "subby"))

	out.Reset()
	require.NoError(t, userCommand(ctx, nil, &out))
	listing := out.String()
	for _, want := range []string{"admin", "administrator", "eddie", "editor", "read,export", "subby", "subscriber"} {
		assert.Contains(t, listing, want)
	}
}

func TestUserAdd_Rejects(t *testing.T) {
	ctx := setupAccounts(t)
	var out bytes.Buffer

	err := userCommand(ctx, []string{"add", "--username", "admin"}, &out)
	assert.ErrorContains(t, err, "already exists")

	err = userCommand(ctx, []string{"add", "--username", "root", "--role", "superuser"}, &out)
	assert.ErrorIs(t, err, store.ErrInvalidRole)

	err = userCommand(ctx, []string{"add"}, &out)
	assert.ErrorContains(t, err, "--username")

	err = userCommand(ctx, []string{"frobnicate"}, &out)
	assert.ErrorContains(t, err, "unknown user subcommand")
}

func TestUserSetRole(t *testing.T) {
	ctx := setupAccounts(t)
	var out bytes.Buffer

	require.NoError(t, userCommand(ctx, []string{"add", "--username", "eddie", "--role", "editor"}, &out))

	require.NoError(t, userCommand(ctx, []string{"set-role", "--username", "eddie", "--role", "Subscriber"}, &out))
	assert.Equal(t, store.RoleSubscriber, accountRole(t, "eddie"))

	err := userCommand(ctx, []string{"set-role", "--username", "admin", "--role", "editor"}, &out)
	assert.ErrorContains(t, err, "last administrator")
	assert.Equal(t, store.RoleAdministrator, accountRole(t, "admin"))

	require.NoError(t, userCommand(ctx, []string{"set-role", "--username", "eddie", "--role", "administrator"}, &out))
	require.NoError(t, userCommand(ctx, []string{"set-role", "--username", "admin", "--role", "editor"}, &out))
	assert.Equal(t, store.RoleEditor, accountRole(t, "admin"))

	err = userCommand(ctx, []string{"set-role", "--username", "ghost", "--role", "editor"}, &out)
	assert.ErrorContains(t, err, "no account named")
}
