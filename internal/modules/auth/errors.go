package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password; callers must never distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	// ErrSessionInvalid covers absent, expired, revoked and unsigned
	// refresh tokens, including replay of an already-rotated token.
	ErrSessionInvalid = errors.New("refresh session invalid")
	// ErrResetTokenInvalid covers absent, expired and already consumed
	// reset tokens.
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
)
