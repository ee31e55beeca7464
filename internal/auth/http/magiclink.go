package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/service"
	"github.com/openriskhq/riskdeck-auth/pkg/httpx"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

// MagicLinkHandler covers the three stages of passwordless sign-in.
type MagicLinkHandler struct {
	MagicLinkService *service.MagicLinkService
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

// HandleRequest handles POST /v1/auth/magic-link.
func (h *MagicLinkHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req magicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse magic link request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.MagicLinkService.RequestMagicLink(ctx, req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	// Same response whether or not the email exists.
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for that email, a sign-in link is on its way",
	})
}

type magicConsumeResponse struct {
	HandoffToken string    `json:"handoff_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HandleConsume handles GET /v1/auth/magic-link/consume. The emailed link
// lands here; the response carries the handoff token the client exchanges
// for a session.
func (h *MagicLinkHandler) HandleConsume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing token parameter")
		return
	}

	result, err := h.MagicLinkService.ConsumeMagicLink(ctx, token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, magicConsumeResponse{
		HandoffToken: result.HandoffToken,
		ExpiresAt:    result.ExpiresAt,
	})
}

type magicExchangeRequest struct {
	HandoffToken string `json:"handoff_token"`
}

// HandleExchange handles POST /v1/auth/magic-link/exchange.
func (h *MagicLinkHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req magicExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse exchange request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	session, err := h.MagicLinkService.ExchangeMagicAuthToken(ctx, req.HandoffToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newSessionResponse(session))
}
