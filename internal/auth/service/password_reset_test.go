package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openriskhq/riskdeck-auth/internal/auth/notify"
)

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerVerified(t, env, "ada@example.com", testPassword)

	require.NoError(t, env.reset.RequestPasswordReset(ctx, "ada@example.com"))
	msg := env.notifier.last(t)
	require.Equal(t, notify.KindPasswordReset, msg.Kind)

	const newPassword = "N3w-Secret!pass"
	require.NoError(t, env.reset.ResetPassword(ctx, msg.Token, newPassword, newPassword))

	_, err := env.login.Login(ctx, Credentials{Email: "ada@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	result, err := env.login.Login(ctx, Credentials{Email: "ada@example.com", Password: newPassword})
	require.NoError(t, err)
	assert.NotNil(t, result.Session)
}

func TestPasswordResetTokenSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerVerified(t, env, "ada@example.com", testPassword)

	require.NoError(t, env.reset.RequestPasswordReset(ctx, "ada@example.com"))
	token := env.notifier.last(t).Token

	const newPassword = "N3w-Secret!pass"
	require.NoError(t, env.reset.ResetPassword(ctx, token, newPassword, newPassword))

	err := env.reset.ResetPassword(ctx, token, "An0ther-Pass!", "An0ther-Pass!")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredLink)
}

func TestPasswordResetRequestOverwritesPrevious(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerVerified(t, env, "ada@example.com", testPassword)

	require.NoError(t, env.reset.RequestPasswordReset(ctx, "ada@example.com"))
	first := env.notifier.last(t).Token
	require.NoError(t, env.reset.RequestPasswordReset(ctx, "ada@example.com"))
	second := env.notifier.last(t).Token

	const newPassword = "N3w-Secret!pass"
	assert.ErrorIs(t, env.reset.ResetPassword(ctx, first, newPassword, newPassword), ErrInvalidOrExpiredLink)
	assert.NoError(t, env.reset.ResetPassword(ctx, second, newPassword, newPassword))
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv(t)

	before := env.notifier.count()
	require.NoError(t, env.reset.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Equal(t, before, env.notifier.count())
}

func TestPasswordResetEnforcesPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerVerified(t, env, "ada@example.com", testPassword)

	require.NoError(t, env.reset.RequestPasswordReset(ctx, "ada@example.com"))
	token := env.notifier.last(t).Token

	var v *ValidationError
	err := env.reset.ResetPassword(ctx, token, "weak", "weak")
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "password", v.Field)

	err = env.reset.ResetPassword(ctx, token, "N3w-Secret!pass", "Different1!")
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "confirm_password", v.Field)

	// Policy failures never burn the token.
	assert.NoError(t, env.reset.ResetPassword(ctx, token, "N3w-Secret!pass", "N3w-Secret!pass"))
}
