package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()
	admin := NewPrincipal("admin", []string{"ROLE_ADMIN", PermRead, PermCreate, PermUpdate, PermDelete})
	invited := NewPrincipal("guest", []string{"ROLE_INVITED", PermRead})

	cases := []struct {
		name          string
		method, path  string
		principal     Principal
		authenticated bool
		want          error
	}{
		{"sign-up is public", http.MethodPost, "/auth/sign-up", Principal{}, false, nil},
		{"log-in is public", http.MethodPost, "/auth/log-in", Principal{}, false, nil},
		{"get on auth needs identity", http.MethodGet, "/auth/log-in", Principal{}, false, ErrUnauthenticated},
		{"anonymous list", http.MethodGet, "/api/categorias", Principal{}, false, ErrUnauthenticated},
		{"invited list", http.MethodGet, "/api/categorias", invited, true, nil},
		{"invited get one", http.MethodGet, "/api/categorias/7", invited, true, nil},
		{"invited create", http.MethodPost, "/api/categorias/create", invited, true, ErrForbidden},
		{"invited update", http.MethodPut, "/api/categorias/7", invited, true, ErrForbidden},
		{"invited delete", http.MethodDelete, "/api/categorias/7", invited, true, ErrForbidden},
		{"admin delete", http.MethodDelete, "/api/categorias/7", admin, true, nil},
		{"prefix does not leak", http.MethodGet, "/api/categoriasx", invited, true, nil},
		{"products need identity", http.MethodGet, "/api/productos", Principal{}, false, ErrUnauthenticated},
		{"products any identity", http.MethodDelete, "/api/productos/1", invited, true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Check(tc.method, tc.path, tc.principal, tc.authenticated)
			assert.ErrorIs(t, err, tc.want)
			if tc.want == nil {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicyFirstMatchWins(t *testing.T) {
	policy := NewPolicy(
		Permit(http.MethodGet, "/api/public/**"),
		RequireAuthority("", "/api/**", PermRead),
	)
	assert.NoError(t, policy.Check(http.MethodGet, "/api/public/x", Principal{}, false))
	assert.ErrorIs(t, policy.Check(http.MethodPost, "/api/public/x", Principal{}, false), ErrUnauthenticated)
	assert.ErrorIs(t, policy.Check(http.MethodPost, "/api/public/x", NewPrincipal("u", nil), true), ErrForbidden)

	rule := policy.Match(http.MethodGet, "/other")
	assert.Equal(t, AccessAuthenticated, rule.Access)
}
