package auth

import "errors"

var (
	ErrNotFound        = errors.New("auth: not found")
	ErrConflict        = errors.New("auth: already exists")
	ErrInvalidInput    = errors.New("auth: invalid input")
	ErrUserNotFound    = errors.New("auth: user not found")
	ErrBadCredentials  = errors.New("auth: bad credentials")
	ErrInvalidToken    = errors.New("auth: invalid token")
	ErrUnknownRole     = errors.New("auth: unknown role")
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	ErrForbidden       = errors.New("auth: forbidden")
)
