package domain

import (
	"errors"
	"fmt"
)

// Authentication and authorization errors. ErrUserNotFound and
// ErrIncorrectPassword stay distinct so callers can log the real cause; the
// HTTP layer renders them identically to avoid account enumeration.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrUserNotFound           = errors.New("user not found")
	ErrIncorrectPassword      = errors.New("incorrect password")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidRole            = errors.New("invalid role")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// ValidationError reports which input field failed and why. It is returned
// before any store access happens and its message is safe to render inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
