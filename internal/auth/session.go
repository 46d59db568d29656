// ABOUTME: Starts and ends server-side sign-in sessions backed by the state store
// ABOUTME: A session token is only honoured while its session row exists

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2389/entrydesk/internal/store"
)

// SessionStore persists the sessions behind issued tokens.
type SessionStore interface {
	CreateAdminSession(ctx context.Context, session *store.AdminSession) error
	DeleteAdminSession(ctx context.Context, id string) error
}

// StartSession records a new session for user and returns a token for it.
func StartSession(ctx context.Context, sessions SessionStore, tokens *SessionTokens, user *store.AdminUser, ttl time.Duration) (string, time.Time, error) {
	sessionID := uuid.NewString()

	token, expiresAt, err := tokens.Issue(sessionID, user.ID, user.Role, ttl)
	if err != nil {
		return "", time.Time{}, err
	}

	if err := sessions.CreateAdminSession(ctx, &store.AdminSession{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", time.Time{}, fmt.Errorf("creating session: %w", err)
	}

	return token, expiresAt, nil
}

// EndSession revokes the session, so its token stops authenticating.
func EndSession(ctx context.Context, sessions SessionStore, id *Identity) error {
	if id == nil || id.SessionID == "" {
		return nil
	}
	return sessions.DeleteAdminSession(ctx, id.SessionID)
}
