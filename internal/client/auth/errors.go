package auth

import "errors"

var (
	// ErrNotAuthenticated is returned when no session is stored
	ErrNotAuthenticated = errors.New("not authenticated, run login first")

	// ErrSessionExpired is returned when the stored token has expired
	ErrSessionExpired = errors.New("session expired, run login again")
)
