package store

import (
	"context"
	"encoding/json"
	"testing"

	"go-reseller-ws/internal/kv"
	"go-reseller-ws/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingKV struct {
	kv.KeyValueStore
	err error
}

func (f failingKV) Set(context.Context, string, []byte) error { return f.err }
func (f failingKV) Delete(context.Context, string) error      { return f.err }

func sampleSessionUser() SessionUser {
	return SessionUser{
		ID:       uuid.New(),
		Email:    "sari@example.com",
		Username: "sari.jualan",
		FullName: "Sari Wulandari",
		Role:     model.RoleReseller,
		Token:    "token",
	}
}

func TestSessionStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	backends := map[string]kv.KeyValueStore{
		"memory": kv.NewMemoryStore(),
	}
	fileStore, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)
	backends["file"] = fileStore

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			s, err := NewSessionStore(ctx, backend, newDiscardLogger())
			require.NoError(t, err)
			assert.False(t, s.IsAuthenticated())
			assert.Nil(t, s.Role())

			user := sampleSessionUser()
			require.NoError(t, s.SetUser(ctx, user))

			reopened, err := NewSessionStore(ctx, backend, newDiscardLogger())
			require.NoError(t, err)
			got, ok := reopened.User()
			require.True(t, ok)
			assert.Equal(t, user, got)
			require.NotNil(t, reopened.Role())
			assert.Equal(t, model.RoleReseller, *reopened.Role())

			require.NoError(t, reopened.Logout(ctx))
			assert.False(t, reopened.IsAuthenticated())

			again, err := NewSessionStore(ctx, backend, newDiscardLogger())
			require.NoError(t, err)
			assert.False(t, again.IsAuthenticated())
		})
	}
}

func TestSessionStore_RejectsInvalidUsers(t *testing.T) {
	ctx := context.Background()
	s, err := NewSessionStore(ctx, kv.NewMemoryStore(), newDiscardLogger())
	require.NoError(t, err)

	bad := sampleSessionUser()
	bad.Role = "admin"
	assert.ErrorIs(t, s.SetUser(ctx, bad), ErrInvalidRole)

	noID := sampleSessionUser()
	noID.ID = uuid.Nil
	assert.ErrorIs(t, s.SetUser(ctx, noID), ErrInvalidSession)

	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_IgnoresUnreadableSlot(t *testing.T) {
	ctx := context.Background()
	user := sampleSessionUser()

	wrongVersion, err := json.Marshal(persistedSession{Version: SessionSchemaVersion + 1, User: &user})
	require.NoError(t, err)
	badRole := user
	badRole.Role = "superuser"
	invalidRole, err := json.Marshal(persistedSession{Version: SessionSchemaVersion, User: &badRole})
	require.NoError(t, err)

	cases := map[string][]byte{
		"corrupt json":  []byte("{not json"),
		"wrong version": wrongVersion,
		"invalid role":  invalidRole,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			backend := kv.NewMemoryStore()
			require.NoError(t, backend.Set(ctx, SessionStorageKey, raw))

			s, err := NewSessionStore(ctx, backend, newDiscardLogger())
			require.NoError(t, err)
			assert.False(t, s.IsAuthenticated())
		})
	}
}

func TestSessionStore_FailedWriteKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	s, err := NewSessionStore(ctx, backend, newDiscardLogger())
	require.NoError(t, err)
	user := sampleSessionUser()
	require.NoError(t, s.SetUser(ctx, user))

	s.kv = failingKV{KeyValueStore: backend, err: errBoom}

	other := sampleSessionUser()
	assert.ErrorIs(t, s.SetUser(ctx, other), errBoom)
	got, _ := s.User()
	assert.Equal(t, user.ID, got.ID)

	assert.ErrorIs(t, s.Logout(ctx), errBoom)
	assert.True(t, s.IsAuthenticated())
}
