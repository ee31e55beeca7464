package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/idx"
)

func TestHousekeepingPurgesExpiredTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A token that is already expired at issue time.
	opaque, err := env.tokens.Issue(ctx, "x@example.com", domain.TokenPurposeVerification, -time.Minute)
	require.NoError(t, err)

	hk := &HousekeepingService{
		Store:    env.store,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Interval: time.Hour,
	}
	hk.Start()
	hk.Stop()

	// The expired row is gone: reinserting the same value hash does not
	// trip the uniqueness constraint.
	err = env.store.Tokens().CreateToken(ctx, domain.Token{
		ID:         idx.New().String(),
		Identifier: "x@example.com",
		Purpose:    domain.TokenPurposeVerification,
		ValueHash:  cryptox.FingerprintToken(opaque),
		ExpiresAt:  time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)
}
