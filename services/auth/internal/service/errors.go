package service

import "errors"

// Both sentinels are terminal unauthorized outcomes: never retried, never
// escalated. Everything else that escapes the service is a backend fault.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
