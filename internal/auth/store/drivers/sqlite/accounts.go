package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
)

type accountsRepo struct {
	db querier
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, email, name, password_hash, email_verified_at,
			failed_login_attempts, locked_until, last_login_at,
			mfa_enabled, mfa_secret, reset_token_hash, reset_expires_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, 0, NULL, NULL, NULL, NULL, NULL, NULL, ?, ?)`,
		a.ID, a.Email, a.Name,
		mapOptionalString(a.PasswordHash), mapOptionalTime(a.EmailVerifiedAt),
		now, now,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) MarkEmailVerified(ctx context.Context, accountID string, at time.Time) error {
	// email_verified_at, once set, is never overwritten
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET email_verified_at = ?, updated_at = ?
		WHERE id = ? AND email_verified_at IS NULL`,
		at.UTC(), time.Now().UTC(), accountID,
	)
	return err
}

func (r *accountsRepo) RecordLogin(ctx context.Context, accountID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET failed_login_attempts = 0, locked_until = NULL,
			last_login_at = ?, updated_at = ?
		WHERE id = ?`,
		at.UTC(), time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// RegisterFailedLogin is the one read-modify-write the repository performs
// itself: the increment and lock-threshold decision happen in a single
// statement so concurrent wrong-password attempts cannot both observe the
// pre-increment counter.
func (r *accountsRepo) RegisterFailedLogin(
	ctx context.Context,
	accountID string,
	threshold int,
	lockedUntil time.Time,
) (int, *time.Time, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET failed_login_attempts = failed_login_attempts + 1,
			locked_until = CASE
				WHEN failed_login_attempts + 1 >= ?2 THEN ?3
				ELSE locked_until
			END,
			updated_at = ?4
		WHERE id = ?1
		RETURNING failed_login_attempts, locked_until`,
		accountID, threshold, lockedUntil.UTC(), time.Now().UTC(),
	)

	var (
		attempts int
		lockedAt sql.NullTime
	)
	if err := row.Scan(&attempts, &lockedAt); err != nil {
		return 0, nil, mapNotFound(err)
	}
	return attempts, mapNullTimePtr(lockedAt), nil
}

func (r *accountsRepo) SetResetToken(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET reset_token_hash = ?, reset_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		tokenHash, expiresAt.UTC(), time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) GetAccountByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE reset_token_hash = ? AND reset_expires_at > ?`,
		tokenHash, now.UTC(),
	)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = ?, reset_token_hash = NULL, reset_expires_at = NULL,
			updated_at = ?
		WHERE id = ?`,
		newHash, time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) UpdateMFASecret(ctx context.Context, accountID, secret string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET mfa_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) EnableMFA(ctx context.Context, accountID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET mfa_enabled = ?, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) DisableMFA(ctx context.Context, accountID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET mfa_enabled = NULL, mfa_secret = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps zero affected rows to store.ErrNotFound so update calls
// against missing accounts fail loudly instead of silently no-opping.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
