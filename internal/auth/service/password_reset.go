package service

import (
	"context"
	"errors"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/notify"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

// PasswordResetService handles the forgot-password flow. The reset token
// lives in a single slot on the account row, so requesting again simply
// overwrites the previous token.
type PasswordResetService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Notifier notify.Notifier
}

// RequestPasswordReset emails a reset link. Unknown emails succeed silently.
func (s *PasswordResetService) RequestPasswordReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		log.Error("failed to load account for password reset", "err", err)
		return ErrOperationFailed
	}

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate reset token", "account_id", account.ID, "err", err)
		return ErrOperationFailed
	}

	expiresAt := time.Now().UTC().Add(domain.PasswordResetTTL)
	err = s.Store.Accounts().SetResetToken(ctx, account.ID, cryptox.FingerprintToken(opaque), expiresAt)
	if err != nil {
		log.Error("failed to store reset token", "account_id", account.ID, "err", err)
		return ErrOperationFailed
	}

	if err := s.Notifier.Send(ctx, notify.KindPasswordReset, account.Email, account.Name, opaque); err != nil {
		log.Warn("failed to send password reset email", "account_id", account.ID, "err", err)
	}

	return nil
}

// ResetPassword redeems a reset token and replaces the password. The stored
// token slot is cleared in the same statement that writes the new hash, so a
// reset link can never be replayed.
func (s *PasswordResetService) ResetPassword(ctx context.Context, tokenValue, newPassword, confirmPassword string) error {
	log := slogx.FromContext(ctx)

	if v := validatePassword(newPassword); v != nil {
		return v
	}
	if newPassword != confirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}

	account, err := s.Store.Accounts().GetAccountByResetTokenHash(
		ctx, cryptox.FingerprintToken(tokenValue), time.Now().UTC(),
	)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredLink
		}
		log.Error("failed to look up reset token", "err", err)
		return ErrOperationFailed
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		log.Error("failed to hash new password", "account_id", account.ID, "err", err)
		return ErrOperationFailed
	}

	if err := s.Store.Accounts().UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		log.Error("failed to update password", "account_id", account.ID, "err", err)
		return ErrOperationFailed
	}

	log.Info("password reset", "account_id", account.ID)
	return nil
}
