package auth

import (
	"fmt"
	"strings"
)

// RoleName is one of the fixed role kinds a user can hold.
type RoleName string

const (
	RoleAdmin     RoleName = "ADMIN"
	RoleUser      RoleName = "USER"
	RoleInvited   RoleName = "INVITED"
	RoleDeveloper RoleName = "DEVELOPER"
)

// Permission names granted through roles.
const (
	PermRead   = "READ"
	PermCreate = "CREATE"
	PermUpdate = "UPDATE"
	PermDelete = "DELETE"
)

// RoleAuthorityPrefix marks role authorities inside a token.
const RoleAuthorityPrefix = "ROLE_"

// MaxRequestedRoles caps the role names accepted at sign-up.
const MaxRequestedRoles = 3

var knownRoles = []RoleName{RoleAdmin, RoleUser, RoleInvited, RoleDeveloper}

// KnownRoles returns every role kind in declaration order.
func KnownRoles() []RoleName {
	out := make([]RoleName, len(knownRoles))
	copy(out, knownRoles)
	return out
}

// ParseRoleName maps a case-insensitive name onto the closed role set.
func ParseRoleName(raw string) (RoleName, error) {
	name := RoleName(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range knownRoles {
		if name == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
}

// Authority renders the role as it appears in an authority set.
func (r RoleName) Authority() string {
	return RoleAuthorityPrefix + string(r)
}

// DefaultRolePermissions is the permission catalog installed at setup.
func DefaultRolePermissions() map[RoleName][]string {
	return map[RoleName][]string{
		RoleAdmin:     {PermRead, PermCreate, PermUpdate, PermDelete},
		RoleUser:      {PermRead, PermCreate},
		RoleDeveloper: {PermRead, PermCreate, PermUpdate},
		RoleInvited:   {PermRead},
	}
}
