package http

import (
	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
)

// sessionResponse is the wire shape of an established session.
type sessionResponse struct {
	AccountID   string   `json:"account_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	SessionID   string   `json:"session_id"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	AMR         []string `json:"amr"`
}

func newSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		AccountID:   s.AccountID,
		Email:       s.Email,
		Name:        s.Name,
		SessionID:   s.SessionID,
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ExpiresIn.Seconds()),
		AMR:         s.AMR,
	}
}
