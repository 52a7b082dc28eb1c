package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process concurrency safety.
type MemoryStore struct {
	mu       sync.RWMutex
	nextUser int64
	users    map[string]User
	roles    map[RoleName]Role
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding the default role catalog.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		users: make(map[string]User),
		roles: make(map[RoleName]Role),
	}
	permIDs := map[string]int64{}
	for i, name := range []string{PermRead, PermCreate, PermUpdate, PermDelete} {
		permIDs[name] = int64(i + 1)
	}
	catalog := DefaultRolePermissions()
	for i, name := range knownRoles {
		role := Role{ID: int64(i + 1), Name: name}
		for _, perm := range catalog[name] {
			role.Permissions = append(role.Permissions, Permission{ID: permIDs[perm], Name: perm})
		}
		s.roles[name] = role
	}
	return s
}

func (s *MemoryStore) UserByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return copyUser(u), nil
}

func (s *MemoryStore) RolesByName(ctx context.Context, names []RoleName) ([]Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[RoleName]struct{}, len(names))
	var out []Role
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if role, ok := s.roles[name]; ok {
			out = append(out, copyRole(role))
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user User) (User, error) {
	if strings.TrimSpace(user.Username) == "" || user.PasswordHash == "" {
		return User{}, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Username]; exists {
		return User{}, ErrConflict
	}
	s.nextUser++
	user.ID = s.nextUser
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := copyUser(user)
	s.users[user.Username] = stored
	return copyUser(stored), nil
}

func copyUser(u User) User {
	out := u
	out.Roles = make([]Role, len(u.Roles))
	for i, r := range u.Roles {
		out.Roles[i] = copyRole(r)
	}
	return out
}

func copyRole(r Role) Role {
	out := r
	out.Permissions = append([]Permission(nil), r.Permissions...)
	return out
}
