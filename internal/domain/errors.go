package domain

import "errors"

var (
	// ErrTokenMissing means the change-password session was opened without a reset token
	ErrTokenMissing = errors.New("reset token is missing")

	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidToken       = errors.New("reset token is invalid or expired")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrPasswordTooLong    = errors.New("password is too long")
	ErrFieldDisabled      = errors.New("field is disabled")
	ErrSessionClosed      = errors.New("session is closed")
)
