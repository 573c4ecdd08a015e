package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribune/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	mod := &User{ID: uuid.New(), Username: "mod", Role: RoleModerator}
	admin := &User{ID: uuid.New(), Username: "root", Role: RoleAdmin}
	require.NoError(t, store.Save(ctx, mod))
	require.NoError(t, store.Save(ctx, admin))

	t.Run("find by id returns a copy", func(t *testing.T) {
		got, err := store.FindByID(ctx, mod.ID)
		require.NoError(t, err)
		assert.Equal(t, "mod", got.Username)
		assert.False(t, got.CreatedAt.IsZero())

		got.Username = "mutated"
		again, err := store.FindByID(ctx, mod.ID)
		require.NoError(t, err)
		assert.Equal(t, "mod", again.Username)
	})

	t.Run("find by id unknown", func(t *testing.T) {
		_, err := store.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("find by role", func(t *testing.T) {
		admins, err := store.FindByRole(ctx, RoleAdmin)
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, admin.ID, admins[0].ID)

		users, err := store.FindByRole(ctx, RoleUser)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("update flags", func(t *testing.T) {
		now := time.Now()
		flags := ModerationFlags{IsSilenced: true, SilencedUntil: &now, WarningsCount: 2}
		require.NoError(t, store.UpdateFlags(ctx, mod.ID, flags))

		got, err := store.FindByID(ctx, mod.ID)
		require.NoError(t, err)
		assert.True(t, got.Flags.IsSilenced)
		assert.Equal(t, 2, got.Flags.WarningsCount)

		assert.ErrorIs(t, store.UpdateFlags(ctx, uuid.New(), ModerationFlags{}), sentinel.ErrNotFound)
	})
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleModerator.IsStaff())
	assert.False(t, RoleUser.IsStaff())
	assert.False(t, Role("superuser").Valid())
}
