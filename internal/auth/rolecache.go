package auth

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedStore memoizes role lookups in front of another Store. Role edits
// become visible after the TTL or an Invalidate call.
type CachedStore struct {
	Store
	roles *gocache.Cache
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore wraps inner with a role cache of the given TTL.
func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{Store: inner, roles: gocache.New(ttl, time.Minute)}
}

func (s *CachedStore) RolesByName(ctx context.Context, names []RoleName) ([]Role, error) {
	var (
		out     []Role
		missing []RoleName
		seen    = make(map[RoleName]struct{}, len(names))
	)
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if v, ok := s.roles.Get(string(name)); ok {
			out = append(out, copyRole(v.(Role)))
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) == 0 {
		return out, nil
	}
	fetched, err := s.Store.RolesByName(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, role := range fetched {
		s.roles.SetDefault(string(role.Name), copyRole(role))
		out = append(out, role)
	}
	return out, nil
}

// Invalidate drops every cached role.
func (s *CachedStore) Invalidate() {
	s.roles.Flush()
}
