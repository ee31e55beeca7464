package service

import (
	"context"
	"errors"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/notify"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

// VerificationService confirms email ownership.
type VerificationService struct {
	Store    store.Store
	Tokens   *TokenService
	Notifier notify.Notifier
}

// VerifyEmail redeems a verification token and marks the account verified.
// Invalid, expired and superseded tokens are indistinguishable to the caller.
func (s *VerificationService) VerifyEmail(ctx context.Context, tokenValue string) error {
	log := slogx.FromContext(ctx)

	token, err := s.Tokens.Consume(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredLink
		}
		log.Error("failed to consume verification token", "err", err)
		return ErrOperationFailed
	}
	if token.Purpose != domain.TokenPurposeVerification {
		return ErrInvalidOrExpiredLink
	}

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, token.Identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredLink
		}
		log.Error("failed to load account for verification", "err", err)
		return ErrOperationFailed
	}

	err = s.Store.Accounts().MarkEmailVerified(ctx, account.ID, time.Now().UTC())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to mark email verified", "account_id", account.ID, "err", err)
		return ErrOperationFailed
	}

	log.Info("email verified", "account_id", account.ID)
	return nil
}

// ResendVerification issues a fresh verification token, invalidating any
// outstanding one. Unknown emails succeed silently; an already verified
// account is told so, since at that point the caller has proven nothing
// beyond what a login attempt would.
func (s *VerificationService) ResendVerification(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("verification resend for unknown email")
			return nil
		}
		log.Error("failed to load account for resend", "err", err)
		return ErrOperationFailed
	}

	if account.Verified() {
		return ErrAlreadyVerified
	}

	token, err := s.Tokens.Issue(ctx, account.Email, domain.TokenPurposeVerification, domain.VerificationTokenTTL)
	if err != nil {
		log.Error("failed to issue verification token", "account_id", account.ID, "err", err)
		return ErrOperationFailed
	}

	if err := s.Notifier.Send(ctx, notify.KindVerification, account.Email, account.Name, token); err != nil {
		log.Warn("failed to send verification email", "account_id", account.ID, "err", err)
	}

	return nil
}
