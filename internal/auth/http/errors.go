package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openriskhq/riskdeck-auth/internal/auth/service"
	"github.com/openriskhq/riskdeck-auth/pkg/httpx"
)

// writeServiceError translates service-layer failures into the wire error
// shape. Anything unrecognised is a server error; the detail stays in the
// logs.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation  *service.ValidationError
		locked      *service.AccountLockedError
		notVerified *service.EmailNotVerifiedError
	)

	switch {
	case errors.As(err, &validation):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", validation.Message)

	case errors.As(err, &locked):
		httpx.WriteError(w, http.StatusForbidden, "account_locked",
			fmt.Sprintf("Account locked, try again in %d minutes", locked.MinutesLeft))

	case errors.As(err, &notVerified):
		httpx.WriteError(w, http.StatusForbidden, "email_not_verified",
			"Verify your email address before signing in")

	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials",
			"Incorrect email or password")

	case errors.Is(err, service.ErrInvalidTwoFactorCode):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_two_factor_code",
			"Invalid two-factor code")

	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email_in_use",
			"An account with this email already exists")

	case errors.Is(err, service.ErrAlreadyVerified):
		httpx.WriteError(w, http.StatusBadRequest, "email_already_verified",
			"This email address is already verified")

	case errors.Is(err, service.ErrInvalidOrExpiredLink):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_or_expired_link",
			"This link is invalid or has expired")

	case errors.Is(err, service.ErrTwoFactorEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "two_factor_already_enabled",
			"Two-factor authentication is already enabled")

	case errors.Is(err, service.ErrTwoFactorNotEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "two_factor_not_enabled",
			"Two-factor authentication is not enabled")

	case errors.Is(err, service.ErrTwoFactorNotPending):
		httpx.WriteError(w, http.StatusBadRequest, "two_factor_setup_not_started",
			"Start two-factor setup before enabling it")

	case errors.Is(err, service.ErrAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, "account_not_found",
			"Account not found")

	default:
		httpx.WriteError(w, http.StatusInternalServerError, "server_error",
			"Something went wrong, try again later")
	}
}
