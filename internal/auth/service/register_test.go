package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openriskhq/riskdeck-auth/internal/auth/notify"
)

const testPassword = "Sup3r-Secret!"

func TestRegisterSendsVerificationEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account, err := env.registration.Register(ctx, "Ada Lovelace", "ada@example.com", testPassword, testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "ada@example.com", account.Email)

	msg := env.notifier.last(t)
	assert.Equal(t, notify.KindVerification, msg.Kind)
	assert.Equal(t, "ada@example.com", msg.Address)
	assert.NotEmpty(t, msg.Token)

	stored, err := env.store.Accounts().GetAccountByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, stored.Verified())
	assert.True(t, stored.HasPassword())
	assert.NotEqual(t, testPassword, *stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.registration.Register(ctx, "First", "dup@example.com", testPassword, testPassword)
	require.NoError(t, err)

	_, err = env.registration.Register(ctx, "Second", "dup@example.com", testPassword, testPassword)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		fullName string
		email    string
		password string
		confirm  string
		field    string
	}{
		{"empty name", "  ", "a@example.com", testPassword, testPassword, "name"},
		{"bad email", "A", "not-an-email", testPassword, testPassword, "email"},
		{"too short", "A", "a@example.com", "Ab1!", "Ab1!", "password"},
		{"no uppercase", "A", "a@example.com", "lowercase1!", "lowercase1!", "password"},
		{"no lowercase", "A", "a@example.com", "UPPERCASE1!", "UPPERCASE1!", "password"},
		{"no digit", "A", "a@example.com", "NoDigits!!", "NoDigits!!", "password"},
		{"no symbol", "A", "a@example.com", "NoSymbols11", "NoSymbols11", "password"},
		{"mismatch", "A", "a@example.com", testPassword, "Different1!", "confirm_password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.registration.Register(ctx, tc.fullName, tc.email, tc.password, tc.confirm)
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tc.field, v.Field)
		})
	}
}

func TestVerifyEmailTokenSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.registration.Register(ctx, "Ada", "ada@example.com", testPassword, testPassword)
	require.NoError(t, err)
	token := env.notifier.last(t).Token

	require.NoError(t, env.verification.VerifyEmail(ctx, token))
	assert.ErrorIs(t, env.verification.VerifyEmail(ctx, token), ErrInvalidOrExpiredLink)
}

func TestVerifyEmailRejectsGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	err := env.verification.VerifyEmail(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredLink)
}

func TestResendVerificationSupersedesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.registration.Register(ctx, "Ada", "ada@example.com", testPassword, testPassword)
	require.NoError(t, err)
	first := env.notifier.last(t).Token

	require.NoError(t, env.verification.ResendVerification(ctx, "ada@example.com"))
	second := env.notifier.last(t).Token
	require.NotEqual(t, first, second)

	// The superseded token is dead, the fresh one works.
	assert.ErrorIs(t, env.verification.VerifyEmail(ctx, first), ErrInvalidOrExpiredLink)
	assert.NoError(t, env.verification.VerifyEmail(ctx, second))
}

func TestResendVerificationUnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv(t)

	before := env.notifier.count()
	require.NoError(t, env.verification.ResendVerification(context.Background(), "ghost@example.com"))
	assert.Equal(t, before, env.notifier.count())
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	env := newTestEnv(t)
	registerVerified(t, env, "ada@example.com", testPassword)

	err := env.verification.ResendVerification(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}
