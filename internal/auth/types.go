package auth

import (
	"sort"
	"time"
)

// User is a stored account. PasswordHash never leaves the service boundary.
type User struct {
	ID                    int64     `json:"id"`
	Username              string    `json:"username"`
	PasswordHash          string    `json:"-"`
	Enabled               bool      `json:"enabled"`
	AccountNonExpired     bool      `json:"account_non_expired"`
	AccountNonLocked      bool      `json:"account_non_locked"`
	CredentialsNonExpired bool      `json:"credentials_non_expired"`
	Roles                 []Role    `json:"roles"`
	CreatedAt             time.Time `json:"created_at"`
}

// Role groups permissions under one of the known role names.
type Role struct {
	ID          int64        `json:"id"`
	Name        RoleName     `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Permission is a named capability.
type Permission struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Identity is the result of a successful authentication.
type Identity struct {
	Username    string
	Authorities []string
}

// LoginRequest carries log-in credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RoleRequest lists the role names requested at sign-up.
type RoleRequest struct {
	RoleListName []string `json:"roleListName"`
}

// SignUpRequest carries the data needed to open an account.
type SignUpRequest struct {
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	RoleRequest RoleRequest `json:"roleRequest"`
}

// AuthResponse is returned by both log-in and sign-up.
type AuthResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	JWT      string `json:"jwt"`
	Status   bool   `json:"status"`
}

// EffectiveAuthorities returns ROLE_<name> for each role plus every
// permission name, deduplicated and sorted.
func EffectiveAuthorities(roles []Role) []string {
	set := make(map[string]struct{})
	for _, role := range roles {
		set[role.Name.Authority()] = struct{}{}
		for _, perm := range role.Permissions {
			set[perm.Name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
