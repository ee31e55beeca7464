package sqlite

import (
	"context"
	"time"

	"github.com/openriskhq/riskdeck-auth/internal/auth/domain"
)

type tokensRepo struct {
	db querier
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (id, identifier, purpose, value_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Identifier, string(t.Purpose), t.ValueHash,
		t.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *tokensRepo) DeleteTokensFor(ctx context.Context, identifier string, purpose domain.TokenPurpose) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE identifier = ? AND purpose = ?`,
		identifier, string(purpose),
	)
	return err
}

// ConsumeToken deletes and returns the matching non-expired token in a
// single statement. Expired and never-issued tokens are indistinguishable
// to the caller.
func (r *tokensRepo) ConsumeToken(ctx context.Context, valueHash string, now time.Time) (domain.Token, error) {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM tokens
		WHERE value_hash = ? AND expires_at > ?
		RETURNING id, identifier, purpose, value_hash, expires_at, created_at`,
		valueHash, now.UTC(),
	)

	var t domain.Token
	var purpose string
	err := row.Scan(&t.ID, &t.Identifier, &purpose, &t.ValueHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}
	t.Purpose = domain.TokenPurpose(purpose)

	return t, nil
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE expires_at <= ?`, now.UTC())
	return err
}
