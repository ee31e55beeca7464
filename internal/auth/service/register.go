package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/notify"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/idx"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

// RegistrationService creates accounts and kicks off email verification.
type RegistrationService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Tokens   *TokenService
	Notifier notify.Notifier
}

// Register creates an unverified account and emails a verification link.
// A taken email is reported as ErrEmailTaken; this asymmetry with the
// anti-enumeration flows is accepted because a signup form has to say it.
func (s *RegistrationService) Register(ctx context.Context, name, email, password, confirmPassword string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if v := validateRegistration(name, email, password, confirmPassword); v != nil {
		return domain.Account{}, v
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", "err", err)
		return domain.Account{}, ErrOperationFailed
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrEmailTaken
		}
		log.Error("failed to create account", "err", err)
		return domain.Account{}, ErrOperationFailed
	}

	token, err := s.Tokens.Issue(ctx, email, domain.TokenPurposeVerification, domain.VerificationTokenTTL)
	if err != nil {
		log.Error("failed to issue verification token", "account_id", account.ID, "err", err)
		return domain.Account{}, ErrOperationFailed
	}

	// Delivery failure does not undo the registration; the user can request
	// a resend.
	if err := s.Notifier.Send(ctx, notify.KindVerification, email, name, token); err != nil {
		log.Warn("failed to send verification email", "account_id", account.ID, "err", err)
	}

	log.Info("account registered", "account_id", account.ID)
	return account, nil
}
