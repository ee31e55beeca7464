package store

import (
	"context"
	"errors"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable, and to actively stop callers from accidentally nesting
// transactions.
type Store interface {
	Accounts() Accounts
	Tokens() Tokens
	BackupCodes() BackupCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts is the account repository. It is a passive data holder: all
// lifecycle decisions live in the service layer, with the single exception
// of RegisterFailedLogin, whose increment-and-maybe-lock must be one atomic
// statement so concurrent failures cannot both read the same counter.
type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail is the primary lookup during every auth flow.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// MarkEmailVerified sets email_verified_at if it is still unset.
	// Verification, once set, is never cleared.
	MarkEmailVerified(ctx context.Context, accountID string, at time.Time) error

	// RecordLogin resets failed_login_attempts, clears locked_until and
	// sets last_login_at.
	RecordLogin(ctx context.Context, accountID string, at time.Time) error

	// RegisterFailedLogin atomically increments failed_login_attempts and,
	// when the incremented count reaches threshold, sets locked_until.
	// Returns the post-increment counter and lock timestamp.
	RegisterFailedLogin(ctx context.Context, accountID string, threshold int, lockedUntil time.Time) (int, *time.Time, error)

	// SetResetToken stores the single-slot password-reset token hash and
	// expiry, overwriting any outstanding one.
	SetResetToken(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error

	// GetAccountByResetTokenHash returns the account holding a non-expired
	// reset token with the given hash.
	GetAccountByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (domain.Account, error)

	// UpdatePasswordHash sets the password hash and clears the reset slot.
	UpdatePasswordHash(ctx context.Context, accountID, newHash string) error

	// UpdateMFASecret sets the pending TOTP secret for an account.
	UpdateMFASecret(ctx context.Context, accountID, secret string) error

	// EnableMFA marks 2FA as active (sets mfa_enabled timestamp).
	EnableMFA(ctx context.Context, accountID string) error

	// DisableMFA clears mfa_enabled and mfa_secret.
	DisableMFA(ctx context.Context, accountID string) error
}

// Tokens is the single-use token store. Issue semantics (delete any
// outstanding token for the same identifier and purpose, then create) are
// composed by the service inside WithTx from these primitives; consumption
// is a single atomic delete-returning.
type Tokens interface {
	// CreateToken stores a new token record (hash at rest).
	CreateToken(ctx context.Context, t domain.Token) error

	// DeleteTokensFor removes all tokens for an identifier and purpose,
	// enforcing at-most-one-outstanding when paired with CreateToken in a Tx.
	DeleteTokensFor(ctx context.Context, identifier string, purpose domain.TokenPurpose) error

	// ConsumeToken atomically deletes and returns the non-expired token with
	// the given value hash. ErrNotFound covers both never-issued and
	// expired; the two are deliberately indistinguishable.
	ConsumeToken(ctx context.Context, valueHash string, now time.Time) (domain.Token, error)

	// DeleteExpiredTokens is housekeeping.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
}

// BackupCodes stores SHA-256 fingerprints of single-use 2FA recovery codes.
type BackupCodes interface {
	// CreateBackupCode stores a backup code hash for an account.
	CreateBackupCode(ctx context.Context, accountID, codeHash string) error

	// ConsumeBackupCode deletes the code hash if present and reports
	// whether it existed. Single statement, so two concurrent uses of the
	// same code cannot both succeed.
	ConsumeBackupCode(ctx context.Context, accountID, codeHash string) (bool, error)

	// DeleteAllBackupCodes removes every backup code for an account.
	DeleteAllBackupCodes(ctx context.Context, accountID string) error

	// CountBackupCodes returns the number of unused codes for an account.
	CountBackupCodes(ctx context.Context, accountID string) (int, error)
}
