package domain

import "time"

// Session is the artifact returned to the dashboard after a fully
// authenticated login or magic-auth exchange.
type Session struct {
	AccountID   string        `json:"account_id"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
	SessionID   string        `json:"session_id"`
	AccessToken string        `json:"access_token"`
	ExpiresIn   time.Duration `json:"expires_in"`
	AMR         []string      `json:"amr"`
}

// LoginResult is the discriminated outcome of a Login call that did not fail.
// When TwoFactorRequired is set, no session was established and the caller
// must retry with a TOTP code or a backup code.
type LoginResult struct {
	TwoFactorRequired bool     `json:"two_factor_required"`
	Methods           []string `json:"methods,omitempty"` // e.g. ["totp","backup_code"]
	Session           *Session `json:"session,omitempty"`
}

// MagicLinkResult carries the short-lived handoff token issued when a magic
// link is consumed. The session itself is established by a separate exchange
// call so it can originate from a different request context.
type MagicLinkResult struct {
	HandoffToken string    `json:"handoff_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
