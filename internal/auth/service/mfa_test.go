package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// totpCode computes the current code for a secret, the way an authenticator
// app would.
func totpCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)
	return code
}

var backupCodePattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

func TestVerifyTOTPDriftWindow(t *testing.T) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "RiskDeck", AccountName: "ada@example.com"})
	require.NoError(t, err)
	secret := key.Secret()

	now := time.Now().UTC()
	previous, err := totp.GenerateCode(secret, now.Add(-30*time.Second))
	require.NoError(t, err)
	stale, err := totp.GenerateCode(secret, now.Add(-60*time.Second))
	require.NoError(t, err)

	// One step of drift is absorbed; two steps is a dead code.
	assert.True(t, verifyTOTP(secret, previous))
	assert.False(t, verifyTOTP(secret, stale))
}

func TestEnableTwoFactorRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := registerVerified(t, env, "ada@example.com", testPassword)

	setup, err := env.mfa.SetupTwoFactor(ctx, account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	assert.Equal(t, "RiskDeck", setup.Issuer)
	assert.Equal(t, "ada@example.com", setup.Account)

	// Not active until the first code is verified.
	stored, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled())
	require.NotNil(t, stored.MFASecret)

	codes, err := env.mfa.EnableTwoFactor(ctx, account.ID, totpCode(t, setup.Secret))
	require.NoError(t, err)
	require.Len(t, codes, backupCodeCount)
	for _, c := range codes {
		assert.Regexp(t, backupCodePattern, c)
	}

	stored, err = env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled())

	count, err := env.store.BackupCodes().CountBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, backupCodeCount, count)
}

func TestEnableTwoFactorRejectsWrongCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := registerVerified(t, env, "ada@example.com", testPassword)

	_, err := env.mfa.SetupTwoFactor(ctx, account.ID)
	require.NoError(t, err)

	// A code from an unrelated secret never matches.
	other, err := totp.Generate(totp.GenerateOpts{Issuer: "other", AccountName: "x@example.com"})
	require.NoError(t, err)

	_, err = env.mfa.EnableTwoFactor(ctx, account.ID, totpCode(t, other.Secret()))
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)

	stored, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled())
}

func TestEnableTwoFactorWithoutSetup(t *testing.T) {
	env := newTestEnv(t)
	account := registerVerified(t, env, "ada@example.com", testPassword)

	_, err := env.mfa.EnableTwoFactor(context.Background(), account.ID, "123456")
	assert.ErrorIs(t, err, ErrTwoFactorNotPending)
}

func TestSetupTwoFactorAlreadyEnabled(t *testing.T) {
	env := newTestEnv(t)
	account := registerVerified(t, env, "ada@example.com", testPassword)
	enableTwoFactor(t, env, account.ID)

	_, err := env.mfa.SetupTwoFactor(context.Background(), account.ID)
	assert.ErrorIs(t, err, ErrTwoFactorEnabled)
}

func TestDisableTwoFactor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := registerVerified(t, env, "ada@example.com", testPassword)
	secret, _ := enableTwoFactor(t, env, account.ID)

	require.NoError(t, env.mfa.DisableTwoFactor(ctx, account.ID, totpCode(t, secret)))

	stored, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled())
	assert.Nil(t, stored.MFASecret)

	count, err := env.store.BackupCodes().CountBackupCodes(ctx, account.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDisableTwoFactorRejectsBackupCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := registerVerified(t, env, "ada@example.com", testPassword)
	_, codes := enableTwoFactor(t, env, account.ID)

	err := env.mfa.DisableTwoFactor(ctx, account.ID, codes[0])
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)

	stored, err := env.store.Accounts().GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled())
}

func TestDisableTwoFactorNotEnabled(t *testing.T) {
	env := newTestEnv(t)
	account := registerVerified(t, env, "ada@example.com", testPassword)

	err := env.mfa.DisableTwoFactor(context.Background(), account.ID, "123456")
	assert.ErrorIs(t, err, ErrTwoFactorNotEnabled)
}

func TestRegenerateBackupCodesInvalidatesOldSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	account := registerVerified(t, env, "ada@example.com", testPassword)
	secret, oldCodes := enableTwoFactor(t, env, account.ID)

	newCodes, err := env.mfa.RegenerateBackupCodes(ctx, account.ID, totpCode(t, secret))
	require.NoError(t, err)
	require.Len(t, newCodes, backupCodeCount)
	assert.NotElementsMatch(t, oldCodes, newCodes)

	// Old codes are gone.
	_, err = env.login.Login(ctx, Credentials{
		Email: "ada@example.com", Password: testPassword, BackupCode: oldCodes[0],
	})
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)

	// New codes work.
	result, err := env.login.Login(ctx, Credentials{
		Email: "ada@example.com", Password: testPassword, BackupCode: newCodes[0],
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Session)
}
