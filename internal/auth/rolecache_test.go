package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	roleCalls int
}

func (s *countingStore) RolesByName(ctx context.Context, names []RoleName) ([]Role, error) {
	s.roleCalls++
	return s.MemoryStore.RolesByName(ctx, names)
}

func TestCachedStoreRoles(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	cached := NewCachedStore(inner, time.Minute)
	ctx := context.Background()

	roles, err := cached.RolesByName(ctx, []RoleName{RoleAdmin, RoleUser})
	require.NoError(t, err)
	assert.Len(t, roles, 2)
	assert.Equal(t, 1, inner.roleCalls)

	roles, err = cached.RolesByName(ctx, []RoleName{RoleUser, RoleAdmin, RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, roles, 2)
	assert.Equal(t, 1, inner.roleCalls)

	_, err = cached.RolesByName(ctx, []RoleName{RoleInvited})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.roleCalls)

	cached.Invalidate()
	_, err = cached.RolesByName(ctx, []RoleName{RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 3, inner.roleCalls)
}

func TestCachedStorePassesThroughUsers(t *testing.T) {
	cached := NewCachedStore(NewMemoryStore(), 0)
	_, err := cached.UserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
