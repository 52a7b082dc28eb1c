package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"crudstore.app/internal/audit"
	"crudstore.app/internal/auth"
)

func newFilterAPI(t *testing.T) (*API, *auth.TokenCodec, *observer.ObservedLogs) {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret)
	require.NoError(t, err)
	core, logs := observer.New(zapcore.InfoLevel)
	return &API{
		codec:  codec,
		policy: auth.DefaultPolicy(),
		log:    zap.NewNop(),
		audit:  audit.New(zap.New(core)),
	}, codec, logs
}

func TestWithAuthInstallsPrincipal(t *testing.T) {
	a, codec, _ := newFilterAPI(t)
	token, err := codec.Issue("alice", []string{"ROLE_USER", "READ"})
	require.NoError(t, err)

	var (
		got auth.Principal
		ok  bool
	)
	handler := a.withAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = auth.PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/categorias", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.True(t, ok)
	assert.Equal(t, "alice", got.Subject)
	assert.True(t, got.HasAuthority("READ"))
	assert.True(t, got.HasRole(auth.RoleUser))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWithAuthFailsOpen(t *testing.T) {
	a, _, _ := newFilterAPI(t)
	other, err := auth.NewTokenCodec("another-secret-0123456789abcdef")
	require.NoError(t, err)
	foreign, err := other.Issue("mallory", []string{"DELETE"})
	require.NoError(t, err)

	for name, header := range map[string]string{
		"none":    "",
		"basic":   "Basic dXNlcjpwYXNz",
		"garbage": "Bearer abc.def.ghi",
		"foreign": "Bearer " + foreign,
		"empty":   "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := a.withAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				_, ok := auth.PrincipalFromContext(r.Context())
				assert.False(t, ok)
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/categorias", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.True(t, called, "filter must pass the request on")
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestAuthorizeDecisions(t *testing.T) {
	a, _, logs := newFilterAPI(t)
	calls := 0
	handler := a.authorize(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(p *auth.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/categorias/7", nil)
		if p != nil {
			req = req.WithContext(auth.ContextWithPrincipal(req.Context(), *p))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	rr := serve(nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))

	reader := auth.NewPrincipal("bob", []string{"READ"})
	rr = serve(&reader)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	entries := logs.FilterMessage(audit.EventAccessDenied).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].ContextMap()["subject"])
	assert.Equal(t, "DELETE", entries[0].ContextMap()["required"])

	admin := auth.NewPrincipal("root", []string{"ROLE_ADMIN", "DELETE"})
	rr = serve(&admin)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, calls, "handler must run only when admitted")
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := extractBearerToken("  BEARER abc  ")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Bearer   ", "Token abc", "Bear abc"} {
		_, err := extractBearerToken(h)
		assert.Error(t, err, h)
	}
}
