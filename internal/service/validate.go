package service

import (
	"net/mail"
	"strings"

	"members-portal/internal/domain"
)

const minPasswordLength = 6

// NormalizeEmail is the canonical email form used at every store boundary:
// trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignUp(input SignUpInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return &domain.ValidationError{Field: "firstName", Message: "first name is required"}
	}
	if err := validateEmail(input.Email); err != nil {
		return err
	}
	if len(input.Password) < minPasswordLength {
		return &domain.ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &domain.ValidationError{Field: "email", Message: "email is required"}
	}
	// ParseAddress accepts display-name forms like "Ana <a@x.com>"; requiring
	// the parsed address to round-trip rejects those.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &domain.ValidationError{Field: "email", Message: "email must be a valid email address"}
	}
	return nil
}
