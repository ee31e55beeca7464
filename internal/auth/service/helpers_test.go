package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/notify"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store/drivers/sqlite"
	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/idx"
	"github.com/openriskhq/riskdeck-auth/pkg/jwtx"
)

// captureNotifier records sends instead of delivering them.
type captureNotifier struct {
	mu   sync.Mutex
	sent []capturedMessage
}

type capturedMessage struct {
	Kind    notify.Kind
	Address string
	Name    string
	Token   string
}

func (n *captureNotifier) Send(_ context.Context, kind notify.Kind, address, name, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, capturedMessage{Kind: kind, Address: address, Name: name, Token: token})
	return nil
}

func (n *captureNotifier) last(t *testing.T) capturedMessage {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "expected at least one notification")
	return n.sent[len(n.sent)-1]
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testEnv struct {
	store    store.Store
	notifier *captureNotifier

	registration *RegistrationService
	verification *VerificationService
	login        *LoginService
	magic        *MagicLinkService
	reset        *PasswordResetService
	mfa          *MFAService
	sessions     *SessionIssuer
	tokens       *TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Named shared-cache memory database so every pooled connection sees
	// the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", idx.New())
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())

	hasher, err := cryptox.NewHasher(cryptox.MinPasswordCost)
	require.NoError(t, err)

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	keys, err := jwtx.NewEdDSAKeyPair(pemKey)
	require.NoError(t, err)

	notifier := &captureNotifier{}
	tokens := &TokenService{Store: st}
	sessions := &SessionIssuer{Signer: keys, Issuer: "riskdeck-auth-test"}

	return &testEnv{
		store:        st,
		notifier:     notifier,
		registration: &RegistrationService{Store: st, Hasher: hasher, Tokens: tokens, Notifier: notifier},
		verification: &VerificationService{Store: st, Tokens: tokens, Notifier: notifier},
		login:        &LoginService{Store: st, Hasher: hasher, Sessions: sessions},
		magic:        &MagicLinkService{Store: st, Tokens: tokens, Sessions: sessions, Notifier: notifier},
		reset:        &PasswordResetService{Store: st, Hasher: hasher, Notifier: notifier},
		mfa:          &MFAService{Store: st, Issuer: "RiskDeck"},
		sessions:     sessions,
		tokens:       tokens,
	}
}

// registerVerified creates an account and walks it through email
// verification.
func registerVerified(t *testing.T, env *testEnv, email, password string) domain.Account {
	t.Helper()
	ctx := context.Background()

	account, err := env.registration.Register(ctx, "Test User", email, password, password)
	require.NoError(t, err)

	msg := env.notifier.last(t)
	require.Equal(t, notify.KindVerification, msg.Kind)
	require.NoError(t, env.verification.VerifyEmail(ctx, msg.Token))

	return account
}

// enableTwoFactor walks an account through TOTP enrollment and returns the
// shared secret and the plaintext backup codes.
func enableTwoFactor(t *testing.T, env *testEnv, accountID string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := env.mfa.SetupTwoFactor(ctx, accountID)
	require.NoError(t, err)

	code := totpCode(t, setup.Secret)
	codes, err := env.mfa.EnableTwoFactor(ctx, accountID, code)
	require.NoError(t, err)

	return setup.Secret, codes
}
