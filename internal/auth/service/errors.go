package service

import (
	"errors"
	"fmt"
)

// Business-rule failures are values returned across the service boundary,
// never panics or wrapped infrastructure errors. Infrastructure faults are
// logged with full detail at the call site and surfaced uniformly as
// ErrOperationFailed so nothing internal leaks to the caller.
var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrInvalidTwoFactorCode = errors.New("invalid_two_factor_code")
	ErrTwoFactorNotEnabled  = errors.New("two_factor_not_enabled")
	ErrTwoFactorEnabled     = errors.New("two_factor_already_enabled")
	ErrTwoFactorNotPending  = errors.New("two_factor_setup_not_started")
	ErrEmailTaken           = errors.New("email_in_use")
	ErrAlreadyVerified      = errors.New("email_already_verified")
	ErrInvalidOrExpiredLink = errors.New("invalid_or_expired_link")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrOperationFailed      = errors.New("operation_failed")
)

// ValidationError reports the first violated input rule, tagged with the
// offending field so the form can highlight it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// AccountLockedError is returned while a lockout window is active. It is
// returned before any credential is evaluated, so a locked account never
// leaks whether the supplied password was correct.
type AccountLockedError struct {
	MinutesLeft int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.MinutesLeft)
}

// EmailNotVerifiedError carries the email so the caller can offer a resend
// action.
type EmailNotVerifiedError struct {
	Email string
}

func (e *EmailNotVerifiedError) Error() string {
	return "email not verified"
}
