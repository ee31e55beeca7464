package service

import (
	"net/mail"
	"strings"
	"unicode"
)

const minPasswordLength = 8

// validEmail checks if the provided email address is well-formed.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	// Reject the "Name <addr>" form; only a bare address is an identity.
	return err == nil && addr.Address == email
}

// validateRegistration enforces the input shape for Register. The first
// violated rule wins.
func validateRegistration(name, email, password, confirmPassword string) *ValidationError {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	if !validEmail(email) {
		return &ValidationError{Field: "email", Message: "email address is not valid"}
	}
	if v := validatePassword(password); v != nil {
		return v
	}
	if password != confirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}
	return nil
}

// validatePassword enforces the credential policy: at least 8 characters
// with one uppercase, one lowercase, one digit and one symbol.
func validatePassword(password string) *ValidationError {
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return &ValidationError{Field: "password", Message: "password must contain an uppercase letter"}
	case !hasLower:
		return &ValidationError{Field: "password", Message: "password must contain a lowercase letter"}
	case !hasDigit:
		return &ValidationError{Field: "password", Message: "password must contain a digit"}
	case !hasSymbol:
		return &ValidationError{Field: "password", Message: "password must contain a symbol"}
	}

	return nil
}
