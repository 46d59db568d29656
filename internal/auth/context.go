// ABOUTME: Authenticated identity carried through request handlers
// ABOUTME: Provides WithIdentity/FromContext for propagating identity via context

package auth

import (
	"context"

	"github.com/2389/entrydesk/internal/store"
)

// Identity is the authenticated user behind a request.
type Identity struct {
	SessionID   string
	UserID      string
	Username    string
	DisplayName string
	Role        store.Role
}

// Can reports whether the identity holds capability c.
func (i *Identity) Can(c Capability) bool {
	if i == nil {
		return false
	}
	return RoleHas(i.Role, c)
}

type identityContextKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext retrieves the Identity from the context, returning nil if not present.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
