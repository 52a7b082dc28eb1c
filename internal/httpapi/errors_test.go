package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudstore.app/internal/auth"
	"crudstore.app/internal/catalog"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{auth.ErrBadCredentials, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password"},
		{fmt.Errorf("wrap: %w", auth.ErrUserNotFound), http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password"},
		{fmt.Errorf("%w: role \"ROOT\"", auth.ErrUnknownRole), http.StatusBadRequest, "UNKNOWN_ROLE", "role \"ROOT\""},
		{fmt.Errorf("%w: password is required", auth.ErrInvalidInput), http.StatusBadRequest, "VALIDATION_ERROR", "password is required"},
		{fmt.Errorf("%w: precio must be greater than 0", catalog.ErrInvalidInput), http.StatusBadRequest, "VALIDATION_ERROR", "precio must be greater than 0"},
		{fmt.Errorf("%w: username \"a\" is taken", auth.ErrConflict), http.StatusConflict, "CONFLICT", "username \"a\" is taken"},
		{fmt.Errorf("%w: category 4", catalog.ErrNotFound), http.StatusNotFound, "RESOURCE_NOT_FOUND", "category 4"},
		{auth.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required"},
		{auth.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access denied"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error"},
	}
	for _, tc := range cases {
		t.Run(tc.code+"/"+tc.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeServiceError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			require.Equal(t, tc.status, rr.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.code, body.Error)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}
