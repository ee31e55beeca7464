package jwtx_test

import (
	"testing"
	"time"

	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) *jwtx.EdDSAKeyPair {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	kp, err := jwtx.NewEdDSAKeyPair(pemKey)
	require.NoError(t, err)
	return kp
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	kp := newKeyPair(t)
	now := time.Now().UTC()

	claims := jwtx.NewSessionClaims(
		"account-1", "session-1",
		[]string{jwtx.AMRPassword},
		time.Hour,
		"riskdeck-auth",
		"alice@x.com", "Alice",
		now,
	)

	token, err := kp.Sign(claims)
	require.NoError(t, err)

	got, err := kp.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "account-1", got.Subject)
	require.Equal(t, "session-1", got.SID)
	require.Equal(t, "alice@x.com", got.Email)
	require.Equal(t, []string{jwtx.AMRPassword}, got.AMR)
	require.NoError(t, got.ValidateIssuer("riskdeck-auth"))
	require.ErrorIs(t, got.ValidateIssuer("other"), jwtx.ErrIssuer)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	kp := newKeyPair(t)
	claims := jwtx.NewSessionClaims(
		"account-1", "session-1",
		nil,
		-time.Minute,
		"riskdeck-auth",
		"", "",
		time.Now().UTC().Add(-time.Hour),
	)

	token, err := kp.Sign(claims)
	require.NoError(t, err)

	_, err = kp.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	kp := newKeyPair(t)
	other := newKeyPair(t)

	claims := jwtx.NewSessionClaims(
		"account-1", "session-1", nil, time.Hour, "riskdeck-auth", "", "", time.Now().UTC(),
	)
	token, err := kp.Sign(claims)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrSignature)

	_, err = kp.Verify("not-a-token")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}
