// ABOUTME: Admin web UI for browsing and exporting WPForms entries
// ABOUTME: Provides sign-in, session handling, CSRF protection, and route registration

package webadmin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/entrydesk/internal/auth"
	"github.com/2389/entrydesk/internal/report"
	"github.com/2389/entrydesk/internal/store"
	"github.com/2389/entrydesk/internal/wordpress"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "entrydesk_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "entrydesk_csrf"
)

type contextKey string

const csrfContextKey contextKey = "csrf_token"

// Config holds admin UI configuration
type Config struct {
	// AdminURL is the WordPress admin base URL, ending in a slash
	AdminURL string

	// ViewerCapability gates the entries table page
	ViewerCapability auth.Capability

	// ExportCapability gates the export actions
	ExportCapability auth.Capability

	// SessionTTL is how long a sign-in lasts
	SessionTTL time.Duration
}

// Store combines the account and export audit persistence the UI needs
type Store interface {
	store.AdminStore
	store.ExportLog
}

// EntrySource is the WordPress data the UI reads
type EntrySource interface {
	report.Source
	ListForms(ctx context.Context) ([]wordpress.Form, error)
	PluginActive(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
}

// Admin handles admin UI routes and authentication
type Admin struct {
	store    Store
	wp       EntrySource
	exporter *report.Exporter
	tokens   *auth.SessionTokens
	authn    *auth.Authenticator
	config   Config
	logger   *slog.Logger
	menu     *Menu
	actions  map[string]Action
}

// New creates a new Admin handler and registers the entries menu pages and
// export actions.
func New(st Store, wp EntrySource, exporter *report.Exporter, tokens *auth.SessionTokens, cfg Config) *Admin {
	if cfg.ViewerCapability == "" {
		cfg.ViewerCapability = auth.CapManageOptions
	}
	if cfg.ExportCapability == "" {
		cfg.ExportCapability = auth.CapManageOptions
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	a := &Admin{
		store:    st,
		wp:       wp,
		exporter: exporter,
		tokens:   tokens,
		authn:    auth.NewAuthenticator(tokens, st, SessionCookieName),
		config:   cfg,
		logger:   slog.Default().With("component", "admin"),
		menu:     NewMenu(),
		actions:  make(map[string]Action),
	}

	a.registerEntriesRedirect()
	a.registerEntriesViewer()

	return a
}

// RegisterRoutes registers all admin routes on the given mux
func (a *Admin) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", a.handleHealth)

	// Public routes (no auth required)
	mux.HandleFunc("GET /admin/login", a.handleLoginPage)
	mux.HandleFunc("POST /admin/login", a.handleLogin)

	// Action dispatch authenticates per action so failures render a halt page
	mux.HandleFunc("GET /admin/ajax", a.handleAjax)
	mux.HandleFunc("POST /admin/ajax", a.handleAjax)

	// Protected routes (auth required)
	mux.HandleFunc("GET /admin/", a.requireAuth(a.handleDashboard))
	mux.HandleFunc("GET /admin", a.requireAuth(a.handleDashboard))
	mux.HandleFunc("POST /admin/logout", a.requireAuth(a.handleLogout))
	mux.HandleFunc("GET /admin/page/{slug}", a.requireAuth(a.handleMenuPage))
	mux.HandleFunc("GET /admin/help", a.requireAuth(a.handleHelp))
	mux.HandleFunc("GET /admin/help/{topic}", a.requireAuth(a.handleHelp))

	a.logger.Info("admin routes registered")
}

// requireAuth wraps a handler to require authentication
func (a *Admin) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.authn.Authenticate(r)
		if err != nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		next(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	}
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (a *Admin) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		a.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from the form, query (_wpnonce), or
// X-CSRF-Token header against the cookie
func (a *Admin) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token := r.FormValue("csrf_token")
	if token == "" {
		token = r.FormValue("_wpnonce")
	}
	if token == "" {
		token = r.Header.Get("X-CSRF-Token")
	}

	return token != "" && token == cookie.Value
}

// handleHealth reports whether the WordPress database is reachable
func (a *Admin) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := a.wp.Ping(r.Context()); err != nil {
		a.logger.Warn("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("wordpress database unreachable\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}

// handleLoginPage renders the login page
func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := a.authn.Authenticate(r); err == nil {
		http.Redirect(w, r, "/admin/", http.StatusSeeOther)
		return
	}

	_, csrfToken := a.ensureCSRFToken(w, r)
	a.renderLoginPage(w, http.StatusOK, "", csrfToken)
}

// handleLogin processes login form submission
func (a *Admin) handleLogin(w http.ResponseWriter, r *http.Request) {
	fail := func(status int, msg string) {
		_, csrfToken := a.ensureCSRFToken(w, r)
		a.renderLoginPage(w, status, msg, csrfToken)
	}

	if err := r.ParseForm(); err != nil {
		fail(http.StatusBadRequest, "Invalid form data")
		return
	}

	if !a.validateCSRF(r) {
		fail(http.StatusForbidden, "Invalid request, please try again")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		fail(http.StatusBadRequest, "Username and password required")
		return
	}

	user, err := a.store.GetAdminUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrAdminUserNotFound) {
			// Keep timing identical to a wrong password
			_ = auth.CheckPassword("", password)
			fail(http.StatusUnauthorized, "Invalid username or password")
			return
		}
		a.logger.Error("failed to get user", "error", err)
		fail(http.StatusInternalServerError, "An error occurred")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		fail(http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if err := a.createSession(w, r, user); err != nil {
		a.logger.Error("failed to create session", "error", err)
		fail(http.StatusInternalServerError, "An error occurred")
		return
	}

	a.logger.Info("admin login successful", "username", username)
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

// createSession starts a server-side session for the user and sets the cookie
func (a *Admin) createSession(w http.ResponseWriter, r *http.Request, user *store.AdminUser) error {
	if err := a.store.DeleteExpiredAdminSessions(r.Context()); err != nil {
		a.logger.Warn("failed to prune expired sessions", "error", err)
	}

	token, expiresAt, err := auth.StartSession(r.Context(), a.store, a.tokens, user, a.config.SessionTTL)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/admin",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// handleLogout ends the current session and clears the cookies
func (a *Admin) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		// Don't block logout on a bad token, just note it
		if !a.validateCSRF(r) {
			a.logger.Warn("logout request with invalid CSRF token")
		}
	}

	if err := auth.EndSession(r.Context(), a.store, auth.FromContext(r.Context())); err != nil {
		a.logger.Error("failed to delete session", "error", err)
	}

	for _, name := range []string{SessionCookieName, CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/admin",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}

	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// handleDashboard renders the menu pages visible to the user and recent exports
func (a *Admin) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	r, csrfToken := a.ensureCSRFToken(w, r)

	var exports []*store.ExportRecord
	if id.Can(a.config.ExportCapability) {
		var err error
		exports, err = a.store.ListExports(r.Context(), 10)
		if err != nil {
			a.logger.Error("failed to list exports", "error", err)
		}
	}

	a.renderDashboard(w, a.page(r, "Dashboard", csrfToken), exports)
}

// page builds the layout data shared by every authenticated page
func (a *Admin) page(r *http.Request, title, csrfToken string) pageData {
	id := auth.FromContext(r.Context())
	return pageData{
		Title:     title,
		User:      id,
		Menu:      a.menu.Visible(id),
		Notice:    a.dependencyNotice(r.Context()),
		CSRFToken: csrfToken,
	}
}

// generateSecureToken generates a cryptographically secure random hex token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
