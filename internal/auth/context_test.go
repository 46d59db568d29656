// ABOUTME: Unit tests for the request identity helpers
// ABOUTME: Tests capability checks and context propagation

package auth

import (
	"context"
	"testing"

	"github.com/2389/entrydesk/internal/store"
)

func TestIdentity_Can(t *testing.T) {
	tests := []struct {
		role store.Role
		cap  Capability
		want bool
	}{
		{store.RoleAdministrator, CapManageOptions, true},
		{store.RoleAdministrator, CapRead, true},
		{store.RoleEditor, CapExport, true},
		{store.RoleEditor, CapManageOptions, false},
		{store.RoleSubscriber, CapRead, true},
		{store.RoleSubscriber, CapExport, false},
		{store.Role("ghost"), CapRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			id := &Identity{UserID: "u", Role: tt.role}
			if got := id.Can(tt.cap); got != tt.want {
				t.Errorf("Can(%q) = %v, want %v", tt.cap, got, tt.want)
			}
		})
	}
}

func TestFromContext_Present(t *testing.T) {
	id := &Identity{UserID: "user-1", Username: "alice", Role: store.RoleEditor}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	if got == nil {
		t.Fatal("FromContext() returned nil")
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want alice", got.Username)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
	if FromContext(context.Background()).Can(CapRead) {
		t.Error("missing identity must not hold capabilities")
	}
}
