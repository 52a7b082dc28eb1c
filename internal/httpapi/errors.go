package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"crudstore.app/internal/audit"
	"crudstore.app/internal/auth"
	"crudstore.app/internal/catalog"
	"crudstore.app/internal/obs"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorBody{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     code,
		Message:   message,
		RequestID: audit.RequestIDFromContext(r.Context()),
	})
}

// writeServiceError translates service errors into HTTP responses. Errors
// it does not recognise become a generic 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, auth.ErrBadCredentials), errors.Is(err, auth.ErrUserNotFound):
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password")
	case errors.Is(err, auth.ErrUnknownRole):
		writeError(w, r, http.StatusBadRequest, "UNKNOWN_ROLE", detail(err, auth.ErrUnknownRole))
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", detail(err, auth.ErrInvalidInput))
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", detail(err, catalog.ErrInvalidInput))
	case errors.Is(err, errBadRequest):
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", detail(err, errBadRequest))
	case errors.As(err, &maxErr):
		writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	case errors.Is(err, auth.ErrConflict):
		writeError(w, r, http.StatusConflict, "CONFLICT", detail(err, auth.ErrConflict))
	case errors.Is(err, catalog.ErrConflict):
		writeError(w, r, http.StatusConflict, "CONFLICT", detail(err, catalog.ErrConflict))
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "RESOURCE_NOT_FOUND", detail(err, catalog.ErrNotFound))
	case errors.Is(err, auth.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Access denied")
	default:
		obs.LoggerFrom(r.Context(), nil).Error("unhandled service error",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
	}
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
