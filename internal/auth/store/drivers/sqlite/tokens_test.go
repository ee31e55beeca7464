package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/pkg/idx"
)

func newToken(identifier string, purpose domain.TokenPurpose, expiresAt time.Time) domain.Token {
	return domain.Token{
		ID:         idx.New().String(),
		Identifier: identifier,
		Purpose:    purpose,
		ValueHash:  "hash-" + idx.New().String(),
		ExpiresAt:  expiresAt,
	}
}

func TestConsumeTokenIsDestructive(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	token := newToken("ada@example.com", domain.TokenPurposeVerification, now.Add(time.Hour))
	require.NoError(t, st.Tokens().CreateToken(ctx, token))

	consumed, err := st.Tokens().ConsumeToken(ctx, token.ValueHash, now)
	require.NoError(t, err)
	assert.Equal(t, token.Identifier, consumed.Identifier)
	assert.Equal(t, token.Purpose, consumed.Purpose)

	_, err = st.Tokens().ConsumeToken(ctx, token.ValueHash, now)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeTokenExpired(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	token := newToken("ada@example.com", domain.TokenPurposeMagicLink, now.Add(-time.Minute))
	require.NoError(t, st.Tokens().CreateToken(ctx, token))

	// Expired and never-issued are the same failure.
	_, err := st.Tokens().ConsumeToken(ctx, token.ValueHash, now)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTokensForScopesByPurpose(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	verification := newToken("ada@example.com", domain.TokenPurposeVerification, now.Add(time.Hour))
	magic := newToken("ada@example.com", domain.TokenPurposeMagicLink, now.Add(time.Hour))
	require.NoError(t, st.Tokens().CreateToken(ctx, verification))
	require.NoError(t, st.Tokens().CreateToken(ctx, magic))

	require.NoError(t, st.Tokens().DeleteTokensFor(ctx, "ada@example.com", domain.TokenPurposeVerification))

	_, err := st.Tokens().ConsumeToken(ctx, verification.ValueHash, now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Same identifier, different purpose, untouched.
	_, err = st.Tokens().ConsumeToken(ctx, magic.ValueHash, now)
	assert.NoError(t, err)
}

func TestDeleteExpiredTokens(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := newToken("ada@example.com", domain.TokenPurposeVerification, now.Add(-time.Minute))
	live := newToken("bob@example.com", domain.TokenPurposeVerification, now.Add(time.Hour))
	require.NoError(t, st.Tokens().CreateToken(ctx, expired))
	require.NoError(t, st.Tokens().CreateToken(ctx, live))

	require.NoError(t, st.Tokens().DeleteExpiredTokens(ctx, now))

	// The expired row is really gone: its value hash is free again.
	reissued := expired
	reissued.ID = idx.New().String()
	reissued.ExpiresAt = now.Add(time.Hour)
	require.NoError(t, st.Tokens().CreateToken(ctx, reissued))

	_, err := st.Tokens().ConsumeToken(ctx, live.ValueHash, now)
	assert.NoError(t, err)
}

func TestBackupCodes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	account := newAccount("ada@example.com")
	require.NoError(t, st.Accounts().CreateAccount(ctx, account))

	require.NoError(t, st.BackupCodes().CreateBackupCode(ctx, account.ID, "hash-a"))
	require.NoError(t, st.BackupCodes().CreateBackupCode(ctx, account.ID, "hash-b"))

	count, err := st.BackupCodes().CountBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	ok, err := st.BackupCodes().ConsumeBackupCode(ctx, account.ID, "hash-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// Consumed codes do not come back.
	ok, err = st.BackupCodes().ConsumeBackupCode(ctx, account.ID, "hash-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.BackupCodes().DeleteAllBackupCodes(ctx, account.ID))
	count, err = st.BackupCodes().CountBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
