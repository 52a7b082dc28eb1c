package auth

import "strings"

// Principal is the identity attached to an authenticated request.
type Principal struct {
	Subject     string
	Authorities map[string]struct{}
}

// NewPrincipal builds a principal, dropping blank authorities.
func NewPrincipal(subject string, authorities []string) Principal {
	set := make(map[string]struct{}, len(authorities))
	for _, a := range authorities {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		set[a] = struct{}{}
	}
	return Principal{Subject: subject, Authorities: set}
}

// HasAuthority reports whether the principal holds the given authority.
func (p Principal) HasAuthority(authority string) bool {
	_, ok := p.Authorities[authority]
	return ok
}

// HasRole is shorthand for HasAuthority on a role authority.
func (p Principal) HasRole(role RoleName) bool {
	return p.HasAuthority(role.Authority())
}
