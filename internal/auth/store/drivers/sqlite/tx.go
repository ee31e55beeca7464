package sqlite

import (
	"context"
	"errors"

	"github.com/openriskhq/riskdeck-auth/internal/auth/store"
)

// txStore wraps a *sql.Tx and exposes the same repos as Store.
type txStore struct {
	tx interface {
		querier
		Commit() error
		Rollback() error
	}
}

func newTx(tx interface {
	querier
	Commit() error
	Rollback() error
},
) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Accounts() store.Accounts       { return &accountsRepo{db: t.tx} }
func (t *txStore) Tokens() store.Tokens           { return &tokensRepo{db: t.tx} }
func (t *txStore) BackupCodes() store.BackupCodes { return &backupCodesRepo{db: t.tx} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// The remaining Store methods are not valid inside a transaction.

func (t *txStore) ApplyMigrations() error {
	return errors.New("sqlite: cannot apply migrations inside a transaction")
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errors.New("sqlite: nested transactions are not supported")
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errors.New("sqlite: nested transactions are not supported")
}

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }
