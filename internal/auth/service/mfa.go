package service

import (
	"context"
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

const (
	backupCodeCount  = 10
	backupCodeLength = 8

	totpPeriod = 30
	// totpSkew accepts one period either side of now to absorb clock drift
	// between the server and the authenticator device.
	totpSkew = 1
)

// MFAService manages the TOTP second factor and its backup codes.
// Enrollment is two-step: Setup stores a pending secret, Enable activates it
// after the first valid code proves the authenticator was provisioned.
type MFAService struct {
	Store store.Store
	// Issuer is the name shown in authenticator apps.
	Issuer string
}

// SetupTwoFactor begins TOTP enrollment. Calling it again before Enable
// replaces the pending secret.
func (s *MFAService) SetupTwoFactor(ctx context.Context, accountID string) (*domain.MFASetupResponse, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		log.Error("failed to load account for 2fa setup", "err", err)
		return nil, ErrOperationFailed
	}

	if account.TwoFactorEnabled() {
		return nil, ErrTwoFactorEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: account.Email,
		Period:      totpPeriod,
	})
	if err != nil {
		log.Error("failed to generate totp secret", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	if err := s.Store.Accounts().UpdateMFASecret(ctx, account.ID, key.Secret()); err != nil {
		log.Error("failed to store totp secret", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	return &domain.MFASetupResponse{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		Issuer:          s.Issuer,
		Account:         account.Email,
	}, nil
}

// EnableTwoFactor activates 2FA after verifying the first code against the
// pending secret, and returns the freshly generated backup codes. The codes
// are shown exactly once; only their fingerprints are stored.
func (s *MFAService) EnableTwoFactor(ctx context.Context, accountID, code string) ([]string, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		log.Error("failed to load account for 2fa enable", "err", err)
		return nil, ErrOperationFailed
	}

	if account.TwoFactorEnabled() {
		return nil, ErrTwoFactorEnabled
	}
	if account.MFASecret == nil || *account.MFASecret == "" {
		return nil, ErrTwoFactorNotPending
	}

	if !verifyTOTP(*account.MFASecret, code) {
		return nil, ErrInvalidTwoFactorCode
	}

	codes, err := generateBackupCodes()
	if err != nil {
		log.Error("failed to generate backup codes", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().EnableMFA(ctx, account.ID); err != nil {
			return err
		}
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, account.ID); err != nil {
			return err
		}
		for _, c := range codes {
			if err := tx.BackupCodes().CreateBackupCode(ctx, account.ID, cryptox.FingerprintToken(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to enable 2fa", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	log.Info("2fa enabled", "account_id", account.ID)
	return codes, nil
}

// DisableTwoFactor deactivates 2FA and destroys the backup codes. Only a
// live TOTP code is accepted here; a backup code cannot dismantle the factor
// it belongs to.
func (s *MFAService) DisableTwoFactor(ctx context.Context, accountID, code string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		log.Error("failed to load account for 2fa disable", "err", err)
		return ErrOperationFailed
	}

	if !account.TwoFactorEnabled() {
		return ErrTwoFactorNotEnabled
	}

	if !verifyTOTP(*account.MFASecret, code) {
		return ErrInvalidTwoFactorCode
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().DisableMFA(ctx, account.ID); err != nil {
			return err
		}
		return tx.BackupCodes().DeleteAllBackupCodes(ctx, account.ID)
	})
	if err != nil {
		log.Error("failed to disable 2fa", "account_id", account.ID, "err", err)
		return ErrOperationFailed
	}

	log.Info("2fa disabled", "account_id", account.ID)
	return nil
}

// RegenerateBackupCodes replaces the full backup code set. Requires a live
// TOTP code.
func (s *MFAService) RegenerateBackupCodes(ctx context.Context, accountID, code string) ([]string, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		log.Error("failed to load account for backup code regeneration", "err", err)
		return nil, ErrOperationFailed
	}

	if !account.TwoFactorEnabled() {
		return nil, ErrTwoFactorNotEnabled
	}

	if !verifyTOTP(*account.MFASecret, code) {
		return nil, ErrInvalidTwoFactorCode
	}

	codes, err := generateBackupCodes()
	if err != nil {
		log.Error("failed to generate backup codes", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, account.ID); err != nil {
			return err
		}
		for _, c := range codes {
			if err := tx.BackupCodes().CreateBackupCode(ctx, account.ID, cryptox.FingerprintToken(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to regenerate backup codes", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	log.Info("backup codes regenerated", "account_id", account.ID)
	return codes, nil
}

// verifyTOTP checks a 6-digit code against the shared secret with one
// period of skew tolerance.
func verifyTOTP(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func generateBackupCodes() ([]string, error) {
	codes := make([]string, 0, backupCodeCount)
	for range backupCodeCount {
		c, err := cryptox.GenerateHexCode(backupCodeLength)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, nil
}
