// ABOUTME: Resolves the authenticated identity of an HTTP request
// ABOUTME: Accepts the session cookie or an Authorization bearer token

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/2389/entrydesk/internal/store"
)

// ErrNoCredentials is returned when a request carries neither cookie nor bearer token.
var ErrNoCredentials = errors.New("no credentials")

// ErrSessionMismatch is returned when a token's subject differs from the
// account that owns its session.
var ErrSessionMismatch = errors.New("session does not belong to token subject")

// SessionLookup loads the sessions and accounts referenced by session tokens.
type SessionLookup interface {
	GetAdminSession(ctx context.Context, id string) (*store.AdminSession, error)
	GetAdminUser(ctx context.Context, id string) (*store.AdminUser, error)
}

// Authenticator turns request credentials into an Identity.
type Authenticator struct {
	tokens     *SessionTokens
	sessions   SessionLookup
	cookieName string
}

// NewAuthenticator creates an Authenticator reading the named session cookie.
func NewAuthenticator(tokens *SessionTokens, sessions SessionLookup, cookieName string) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions, cookieName: cookieName}
}

// Authenticate verifies the request's credentials, checks the token's session
// is still live, and loads the account. The role is taken from the store, not
// the token, so role changes apply at once.
func (a *Authenticator) Authenticate(r *http.Request) (*Identity, error) {
	token := ""
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		token = cookie.Value
	} else if bearer, errMsg := extractBearerToken(r.Header.Get("Authorization")); errMsg == "" {
		token = bearer
	}
	if token == "" {
		return nil, ErrNoCredentials
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	session, err := a.sessions.GetAdminSession(r.Context(), claims.ID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.UserID != claims.Subject {
		return nil, ErrSessionMismatch
	}

	user, err := a.sessions.GetAdminUser(r.Context(), claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	return &Identity{
		SessionID:   session.ID,
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}
