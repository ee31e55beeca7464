package domain

import "time"

// Account represents one registered dashboard identity. Email is the primary
// lookup key and is stored case-sensitively.
type Account struct {
	ID    string
	Email string
	Name  string

	// PasswordHash is nullable: accounts created through magic-link-only
	// flows may never set a password.
	PasswordHash *string

	// EmailVerifiedAt is nil until the account confirms its address.
	// Credential login is refused while nil.
	EmailVerifiedAt *time.Time

	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time

	// MFAEnabled is the timestamp 2FA was activated (nil when disabled).
	// MFAEnabled non-nil implies MFASecret non-nil.
	MFAEnabled *time.Time
	// MFASecret is the base32 TOTP shared secret. Present from enrollment
	// onwards, even before activation.
	MFASecret *string

	// ResetTokenHash / ResetExpiresAt hold the single outstanding
	// password-reset token. A new request overwrites the previous one.
	ResetTokenHash *string
	ResetExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether the account can attempt credential login.
func (a Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// Verified reports whether the account's email has been confirmed.
func (a Account) Verified() bool {
	return a.EmailVerifiedAt != nil
}

// TwoFactorEnabled reports whether 2FA is active for the account.
func (a Account) TwoFactorEnabled() bool {
	return a.MFAEnabled != nil
}

// LockedAt reports whether the account is locked out at the given instant.
func (a Account) LockedAt(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}
