package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"crudstore.app/internal/audit"
	"crudstore.app/internal/auth"
	"crudstore.app/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth installs the principal of a valid bearer token. It never
// rejects: requests without a usable token continue anonymously and the
// policy decides.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		token, err := a.codec.Verify(raw)
		if err != nil {
			obs.TokenVerified("invalid")
			a.log.Debug("bearer token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		authorities, err := token.Authorities()
		if err != nil || token.Subject() == "" {
			obs.TokenVerified("invalid")
			next.ServeHTTP(w, r)
			return
		}
		obs.TokenVerified("valid")

		principal := auth.NewPrincipal(token.Subject(), authorities)
		next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
	})
}

// authorize enforces the route policy on whatever withAuth installed.
func (a *API) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		err := a.policy.Check(r.Method, r.URL.Path, principal, ok)
		switch {
		case err == nil:
			obs.AuthorizationDecision("allowed")
			next.ServeHTTP(w, r)
			return
		case errors.Is(err, auth.ErrUnauthenticated):
			obs.AuthorizationDecision("unauthenticated")
		case errors.Is(err, auth.ErrForbidden):
			obs.AuthorizationDecision("forbidden")
			_ = a.audit.LogEvent(r.Context(), audit.EventAccessDenied,
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("required", a.policy.Match(r.Method, r.URL.Path).Authority),
			)
		}
		writeServiceError(w, r, err)
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if len(header) < len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
