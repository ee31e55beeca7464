package http

import (
	"encoding/json"
	"net/http"

	"github.com/openriskhq/riskdeck-auth/internal/auth/service"
	"github.com/openriskhq/riskdeck-auth/pkg/httpx"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

// LoginHandler handles credential logins.
type LoginHandler struct {
	LoginService *service.LoginService
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TOTPCode   string `json:"totp_code,omitempty"`
	BackupCode string `json:"backup_code,omitempty"`
}

type loginChallengeResponse struct {
	TwoFactorRequired bool     `json:"two_factor_required"`
	Methods           []string `json:"methods"`
}

// HandleLogin handles POST /v1/auth/login. A 200 carries either a session or
// a two-factor challenge.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse login request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	result, err := h.LoginService.Login(ctx, service.Credentials{
		Email:      req.Email,
		Password:   req.Password,
		TOTPCode:   req.TOTPCode,
		BackupCode: req.BackupCode,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	if result.TwoFactorRequired {
		httpx.WriteJSON(w, http.StatusOK, loginChallengeResponse{
			TwoFactorRequired: true,
			Methods:           result.Methods,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newSessionResponse(result.Session))
}
