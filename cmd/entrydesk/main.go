// ABOUTME: Entry point for the entrydesk admin server and CLI
// ABOUTME: Dispatches serve, init, bootstrap, user, export, and health commands

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/entrydesk/internal/config"
	"github.com/2389/entrydesk/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
            _                 _           _
  ___ _ __ | |_ _ __ _   _  __| | ___  ___| | __
 / _ \ '_ \| __| '__| | | |/ _' |/ _ \/ __| |/ /
|  __/ | | | |_| |  | |_| | (_| |  __/\__ \   <
 \___|_| |_|\__|_|   \__, |\__,_|\___||___/_|\_\
                     |___/
`

// getConfigPath returns the path to the config file.
// Priority: ENTRYDESK_CONFIG env var > XDG_CONFIG_HOME/entrydesk/config.yaml > ~/.config/entrydesk/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ENTRYDESK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "entrydesk", "config.yaml")
}

// getDataPath returns the path to the entrydesk data directory.
// Priority: XDG_DATA_HOME/entrydesk > ~/.local/share/entrydesk
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "entrydesk")
}

// loadConfig reads .env from the working directory, if any, then the config file.
func loadConfig() (*config.Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("loading .env: %w", err)
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, configPath, fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, nil
}

func usage() {
	fmt.Println("Usage: entrydesk <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                          Start the admin server")
	fmt.Println("  init                           Create a new config file interactively")
	fmt.Println("  bootstrap --username NAME      Create the first administrator account")
	fmt.Println("  user [list]                    List accounts and their roles")
	fmt.Println("  user add --username NAME [--role ROLE] [--password PW]")
	fmt.Println("                                 Create an account (role defaults to subscriber)")
	fmt.Println("  user set-role --username NAME --role ROLE")
	fmt.Println("                                 Change an account's role")
	fmt.Println("  export [--format csv|xlsx] [--out FILE] [--form ID]")
	fmt.Println("                                 Write all form entries to a file")
	fmt.Println("  health                         Check server health")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "bootstrap":
		err = runBootstrap(ctx, os.Args[2:])
	case "user", "users":
		err = runUser(ctx, os.Args[2:])
	case "export":
		err = runExport(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("WordPress: %s (%s)\n", cfg.WordPress.AdminURL, cfg.WordPress.Driver)
	green.Print("    ▶ ")
	fmt.Printf("Exports:   %s\n", cfg.Export.Dir)
	if cfg.WebAdmin.BaseURL != "" {
		green.Print("    ▶ ")
		fmt.Printf("Admin UI:  %s/admin/\n", cfg.WebAdmin.BaseURL)
	}
	fmt.Println()

	logger.Info("starting entrydesk",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"version", version,
	)

	s, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return s.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
