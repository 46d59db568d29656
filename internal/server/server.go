// ABOUTME: Server orchestrator that wires the stores, exporter, and admin UI
// ABOUTME: Owns the HTTP server lifecycle and graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/entrydesk/internal/auth"
	"github.com/2389/entrydesk/internal/config"
	"github.com/2389/entrydesk/internal/report"
	"github.com/2389/entrydesk/internal/store"
	"github.com/2389/entrydesk/internal/webadmin"
	"github.com/2389/entrydesk/internal/wordpress"
)

// Server coordinates the entrydesk components.
type Server struct {
	config     *config.Config
	store      *store.SQLiteStore
	wp         *wordpress.DB
	webAdmin   *webadmin.Admin
	httpServer *http.Server
	logger     *slog.Logger
}

// New opens the state store and the WordPress database and builds the HTTP
// handler. Close or Shutdown releases both databases.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	wp, err := OpenWordPress(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	exporter, err := report.NewExporter(cfg.Export.Dir)
	if err != nil {
		st.Close()
		wp.Close()
		return nil, err
	}

	tokens, err := auth.NewSessionTokens([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		st.Close()
		wp.Close()
		return nil, fmt.Errorf("creating session tokens: %w", err)
	}

	s := &Server{
		config: cfg,
		store:  st,
		wp:     wp,
		logger: logger.With("component", "server"),
	}

	s.webAdmin = webadmin.New(st, wp, exporter, tokens, webadmin.Config{
		AdminURL:         cfg.WordPress.AdminURL,
		ViewerCapability: auth.Capability(cfg.Export.ViewerCapability),
		ExportCapability: auth.Capability(cfg.Export.Capability),
		SessionTTL:       cfg.Auth.SessionTTL,
	})

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.RedirectHandler("/admin/", http.StatusFound))
	s.webAdmin.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// OpenWordPress connects to the WordPress database described by cfg.
func OpenWordPress(ctx context.Context, cfg *config.Config) (*wordpress.DB, error) {
	return wordpress.Open(ctx, cfg.WordPress.Driver, cfg.WordPress.DSN, wordpress.Options{
		TablePrefix: cfg.WordPress.TablePrefix,
		PluginFiles: cfg.WordPress.PluginFiles,
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address and blocks until ctx is canceled or
// the server fails. Returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		s.Close()
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown uses a fresh context since the run context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the HTTP server and closes both databases.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "close", s.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// Close closes both databases without touching the HTTP server.
func (s *Server) Close() error {
	var errs []error
	errs = appendCloseError(errs, "wordpress close", s.wp.Close())
	errs = appendCloseError(errs, "store close", s.store.Close())
	return errors.Join(errs...)
}

func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}
