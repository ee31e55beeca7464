package service

import (
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/pkg/idx"
	"github.com/openriskhq/riskdeck-auth/pkg/jwtx"
)

// SessionIssuer mints dashboard sessions once an authentication flow has
// fully succeeded. It is the only component allowed to sign tokens.
type SessionIssuer struct {
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
}

// Establish signs a session token for the account with the given
// authentication method references.
func (s *SessionIssuer) Establish(account domain.Account, amr []string) (*domain.Session, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	sid := idx.New().String()
	claims := jwtx.NewSessionClaims(
		account.ID, sid, amr, ttl, s.Issuer,
		account.Email, account.Name,
		time.Now().UTC(),
	)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		AccountID:   account.ID,
		Email:       account.Email,
		Name:        account.Name,
		SessionID:   sid,
		AccessToken: token,
		ExpiresIn:   ttl,
		AMR:         amr,
	}, nil
}
