package auth

import "context"

// Store describes persistence operations required by the auth subsystem.
type Store interface {
	// UserByUsername returns the user with its roles and their permissions,
	// or ErrNotFound.
	UserByUsername(ctx context.Context, username string) (User, error)
	// RolesByName returns the persisted roles among names. Unknown names are
	// skipped, not reported.
	RolesByName(ctx context.Context, names []RoleName) ([]Role, error)
	// CreateUser persists the user and its role links. A taken username is
	// ErrConflict.
	CreateUser(ctx context.Context, user User) (User, error)
}
