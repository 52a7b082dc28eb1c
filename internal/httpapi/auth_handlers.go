package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"crudstore.app/internal/audit"
	"crudstore.app/internal/auth"
	"crudstore.app/internal/obs"
)

func (a *API) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := a.auth.SignUp(r.Context(), req)
	if err != nil {
		_ = a.audit.LogEvent(r.Context(), audit.EventSignUpRejected,
			zap.String("username", req.Username),
			zap.Strings("roles", req.RoleRequest.RoleListName),
			zap.Error(err),
		)
		writeServiceError(w, r, err)
		return
	}
	obs.TokenIssued()
	_ = a.audit.LogEvent(r.Context(), audit.EventAccountCreated,
		zap.String("username", resp.Username),
		zap.Strings("roles", req.RoleRequest.RoleListName),
	)
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleLogIn(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		result := loginResult(err)
		obs.LoginAttempt(result)
		_ = a.audit.LogEvent(r.Context(), audit.EventLoginFailed,
			zap.String("username", req.Username),
			zap.String("reason", result),
		)
		writeServiceError(w, r, err)
		return
	}
	obs.LoginAttempt("success")
	obs.TokenIssued()
	_ = a.audit.LogEvent(r.Context(), audit.EventLoginSucceeded, zap.String("username", resp.Username))
	writeJSON(w, http.StatusOK, resp)
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(err, auth.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, auth.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
