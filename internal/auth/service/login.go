package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
	"github.com/openriskhq/riskdeck-auth/pkg/cryptox"
	"github.com/openriskhq/riskdeck-auth/pkg/jwtx"
	"github.com/openriskhq/riskdeck-auth/pkg/slogx"
)

const (
	// maxFailedLogins is the consecutive-failure threshold that triggers a
	// lockout.
	maxFailedLogins = 5
	// lockoutDuration is how long a locked account stays locked.
	lockoutDuration = 30 * time.Minute
)

// Credentials are the inputs to a login attempt. TOTPCode and BackupCode are
// mutually exclusive second factors; when 2FA is enabled and both are empty
// the attempt short-circuits into a two-factor challenge.
type Credentials struct {
	Email      string
	Password   string
	TOTPCode   string
	BackupCode string
}

// LoginService authenticates credential logins, including the 2FA step and
// the failed-attempt lockout.
type LoginService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Sessions *SessionIssuer
}

// Login runs the credential flow. The checks run in a fixed order: lockout,
// email verification, two-factor, then password. The second factor is
// evaluated before the password so a challenge response never reveals
// whether the password half of the attempt was correct. The ordering means a
// valid backup code is consumed even when the password check then fails;
// that is the cost of keeping the factors independent.
func (s *LoginService) Login(ctx context.Context, creds Credentials) (*domain.LoginResult, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load account for login", "err", err)
		return nil, ErrOperationFailed
	}

	if account.LockedAt(now) {
		return nil, &AccountLockedError{MinutesLeft: minutesUntil(*account.LockedUntil, now)}
	}

	if !account.Verified() {
		return nil, &EmailNotVerifiedError{Email: account.Email}
	}

	amr := []string{jwtx.AMRPassword}

	if account.TwoFactorEnabled() {
		switch {
		case creds.TOTPCode != "":
			if !verifyTOTP(*account.MFASecret, creds.TOTPCode) {
				return nil, ErrInvalidTwoFactorCode
			}
			amr = append(amr, jwtx.AMROTP, jwtx.AMRMFA)

		case creds.BackupCode != "":
			ok, err := s.consumeBackupCode(ctx, account.ID, creds.BackupCode)
			if err != nil {
				log.Error("failed to consume backup code", "account_id", account.ID, "err", err)
				return nil, ErrOperationFailed
			}
			if !ok {
				return nil, ErrInvalidTwoFactorCode
			}
			amr = append(amr, jwtx.AMRBackupCode, jwtx.AMRMFA)

		default:
			return &domain.LoginResult{
				TwoFactorRequired: true,
				Methods:           []string{"totp", "backup_code"},
			}, nil
		}
	}

	if !account.HasPassword() {
		return nil, ErrInvalidCredentials
	}

	if err := s.Hasher.Verify(creds.Password, *account.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("failed to verify password", "account_id", account.ID, "err", err)
			return nil, ErrOperationFailed
		}
		return nil, s.registerFailure(ctx, account.ID, now)
	}

	if err := s.Store.Accounts().RecordLogin(ctx, account.ID, now); err != nil {
		log.Error("failed to record login", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	session, err := s.Sessions.Establish(account, amr)
	if err != nil {
		log.Error("failed to establish session", "account_id", account.ID, "err", err)
		return nil, ErrOperationFailed
	}

	log.Info("login succeeded", "account_id", account.ID, "amr", amr)
	return &domain.LoginResult{Session: session}, nil
}

// registerFailure bumps the failed-attempt counter and reports either the
// freshly applied lockout or a plain credential failure.
func (s *LoginService) registerFailure(ctx context.Context, accountID string, now time.Time) error {
	log := slogx.FromContext(ctx)

	count, lockedUntil, err := s.Store.Accounts().RegisterFailedLogin(
		ctx, accountID, maxFailedLogins, now.Add(lockoutDuration),
	)
	if err != nil {
		log.Error("failed to register failed login", "account_id", accountID, "err", err)
		return ErrOperationFailed
	}

	if lockedUntil != nil && lockedUntil.After(now) {
		log.Warn("account locked after repeated failures", "account_id", accountID, "attempts", count)
		return &AccountLockedError{MinutesLeft: minutesUntil(*lockedUntil, now)}
	}

	return ErrInvalidCredentials
}

func (s *LoginService) consumeBackupCode(ctx context.Context, accountID, code string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return false, nil
	}
	return s.Store.BackupCodes().ConsumeBackupCode(ctx, accountID, cryptox.FingerprintToken(normalized))
}

// minutesUntil rounds the remaining lock window up to whole minutes, never
// reporting zero for an active lock.
func minutesUntil(until, now time.Time) int {
	remaining := until.Sub(now)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
