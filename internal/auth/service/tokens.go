package service

import (
	"context"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/idx"
)

// TokenService owns the single-use token lifecycle. Tokens travel to the
// user as opaque base64url values; only their SHA-256 fingerprints are
// persisted.
type TokenService struct {
	Store store.Store
}

// Issue deletes any outstanding token for (identifier, purpose) and creates
// a fresh one, in one transaction, so at most one token per purpose per
// identifier is ever live. It returns the opaque value for delivery.
func (s *TokenService) Issue(
	ctx context.Context,
	identifier string,
	purpose domain.TokenPurpose,
	ttl time.Duration,
) (string, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	record := domain.Token{
		ID:         idx.New().String(),
		Identifier: identifier,
		Purpose:    purpose,
		ValueHash:  cryptox.FingerprintToken(opaque),
		ExpiresAt:  time.Now().UTC().Add(ttl),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().DeleteTokensFor(ctx, identifier, purpose); err != nil {
			return err
		}
		return tx.Tokens().CreateToken(ctx, record)
	})
	if err != nil {
		return "", err
	}

	return opaque, nil
}

// Consume redeems an opaque token value. store.ErrNotFound covers
// never-issued, superseded, already-consumed and expired alike.
func (s *TokenService) Consume(ctx context.Context, value string) (domain.Token, error) {
	return s.Store.Tokens().ConsumeToken(ctx, cryptox.FingerprintToken(value), time.Now().UTC())
}
