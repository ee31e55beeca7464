package http

import (
	"encoding/json"
	"net/http"

	"github.com/openriskhq/riskdeck-auth/internal/auth/service"
	"github.com/openriskhq/riskdeck-auth/pkg/httpx"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

// AccountHandler covers registration and email verification.
type AccountHandler struct {
	RegistrationService *service.RegistrationService
	VerificationService *service.VerificationService
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type registerResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// HandleRegister handles POST /v1/auth/register.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse register request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	account, err := h.RegistrationService.Register(ctx, req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, registerResponse{
		AccountID: account.ID,
		Email:     account.Email,
		Message:   "Check your inbox for a verification link",
	})
}

// HandleVerifyEmail handles GET /v1/auth/verify-email.
func (h *AccountHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing token parameter")
		return
	}

	if err := h.VerificationService.VerifyEmail(ctx, token); err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Email verified, you can now sign in",
	})
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

// HandleResendVerification handles POST /v1/auth/resend-verification.
func (h *AccountHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse resend request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.VerificationService.ResendVerification(ctx, req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	// Same response whether or not the email exists.
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for that email, a verification link is on its way",
	})
}
