package domain

import "time"

// TokenPurpose scopes a single-use token to the flow that issued it.
type TokenPurpose string

const (
	// TokenPurposeVerification confirms ownership of an email address.
	TokenPurposeVerification TokenPurpose = "verification"
	// TokenPurposeMagicLink is the email-delivered passwordless sign-in link.
	TokenPurposeMagicLink TokenPurpose = "magic_link"
	// TokenPurposeMagicAuth is the short-lived second-stage handoff issued
	// after a magic link is consumed, redeemed by the session exchange.
	TokenPurposeMagicAuth TokenPurpose = "magic_auth"
)

// Token is a single-use, time-boxed artifact. Only its SHA-256 fingerprint
// is persisted; the opaque value travels to the user once and is never
// stored.
type Token struct {
	ID         string
	Identifier string // the subject: an email, or magic-auth-<accountID>
	Purpose    TokenPurpose
	ValueHash  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Token TTLs. Fixed by policy, not configurable per request.
const (
	VerificationTokenTTL = 24 * time.Hour
	MagicLinkTokenTTL    = time.Hour
	MagicAuthTokenTTL    = 5 * time.Minute
	PasswordResetTTL     = time.Hour
)
