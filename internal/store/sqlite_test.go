// ABOUTME: Tests for the SQLite state store
// ABOUTME: Covers store creation, admin user CRUD, role updates, and sign-in sessions

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestCreateAndGetAdminUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &AdminUser{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		DisplayName:  "Alice",
		Role:         RoleAdministrator,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateAdminUser(ctx, user))

	got, err := s.GetAdminUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.Equal(t, RoleAdministrator, got.Role)
	assert.True(t, got.CreatedAt.Equal(user.CreatedAt))

	byName, err := s.GetAdminUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byName.ID)
}

func TestGetAdminUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAdminUser(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrAdminUserNotFound))

	_, err = s.GetAdminUserByUsername(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrAdminUserNotFound))
}

func TestCreateAdminUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAdminUser(ctx, &AdminUser{ID: "a", Username: "bob", DisplayName: "Bob", Role: RoleEditor, CreatedAt: time.Now()}))
	err := s.CreateAdminUser(ctx, &AdminUser{ID: "b", Username: "bob", DisplayName: "Bob 2", Role: RoleEditor, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestCreateAdminUser_InvalidRole(t *testing.T) {
	s := newTestStore(t)

	err := s.CreateAdminUser(context.Background(), &AdminUser{ID: "a", Username: "eve", DisplayName: "Eve", Role: "superuser", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateAdminUserRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAdminUser(ctx, &AdminUser{ID: "u", Username: "carol", DisplayName: "Carol", Role: RoleSubscriber, CreatedAt: time.Now()}))
	require.NoError(t, s.UpdateAdminUserRole(ctx, "u", RoleAdministrator))

	got, err := s.GetAdminUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, RoleAdministrator, got.Role)

	assert.ErrorIs(t, s.UpdateAdminUserRole(ctx, "nobody", RoleEditor), ErrAdminUserNotFound)
	assert.ErrorIs(t, s.UpdateAdminUserRole(ctx, "u", "root"), ErrInvalidRole)
}

func TestListAndCountAdminUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountAdminUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	base := time.Now().UTC().Truncate(time.Second)
	for i, name := range []string{"first", "second", "third"} {
		require.NoError(t, s.CreateAdminUser(ctx, &AdminUser{
			ID:          name,
			Username:    name,
			DisplayName: name,
			Role:        RoleSubscriber,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	users, err := s.ListAdminUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "first", users[0].Username)
	assert.Equal(t, "third", users[2].Username)

	count, err = s.CountAdminUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAdminSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAdminUser(ctx, &AdminUser{ID: "u", Username: "dora", DisplayName: "Dora", Role: RoleEditor, CreatedAt: time.Now()}))

	now := time.Now().UTC().Truncate(time.Second)
	live := &AdminSession{ID: "live", UserID: "u", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := &AdminSession{ID: "stale", UserID: "u", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, s.CreateAdminSession(ctx, live))
	require.NoError(t, s.CreateAdminSession(ctx, stale))

	got, err := s.GetAdminSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "u", got.UserID)
	assert.True(t, got.ExpiresAt.Equal(live.ExpiresAt))

	_, err = s.GetAdminSession(ctx, "stale")
	assert.ErrorIs(t, err, ErrAdminSessionNotFound, "expired sessions are not returned")

	require.NoError(t, s.DeleteExpiredAdminSessions(ctx))
	var remaining int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_sessions").Scan(&remaining))
	assert.Equal(t, 1, remaining)

	require.NoError(t, s.DeleteAdminSession(ctx, "live"))
	_, err = s.GetAdminSession(ctx, "live")
	assert.ErrorIs(t, err, ErrAdminSessionNotFound)

	assert.NoError(t, s.DeleteAdminSession(ctx, "live"), "deleting twice is fine")
}
