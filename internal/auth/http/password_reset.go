package http

import (
	"encoding/json"
	"net/http"

	"github.com/openriskhq/riskdeck-auth/internal/auth/service"
	"github.com/openriskhq/riskdeck-auth/pkg/httpx"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

// PasswordResetHandler covers the forgot-password flow.
type PasswordResetHandler struct {
	PasswordResetService *service.PasswordResetService
}

type resetRequest struct {
	Email string `json:"email"`
}

// HandleRequest handles POST /v1/auth/password-reset.
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse reset request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.PasswordResetService.RequestPasswordReset(ctx, req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	// Same response whether or not the email exists.
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for that email, a reset link is on its way",
	})
}

type resetConfirmRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// HandleConfirm handles POST /v1/auth/password-reset/confirm.
func (h *PasswordResetHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse reset confirm request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.PasswordResetService.ResetPassword(ctx, req.Token, req.Password, req.ConfirmPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated, you can now sign in",
	})
}
