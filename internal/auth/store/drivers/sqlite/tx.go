package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/franpulido/ticketlog/internal/auth/store"
)

// tx adapts *sql.Tx to store.Tx. Nested transactions are rejected rather
// than silently flattened.
type tx struct {
	t *sql.Tx
}

func newTx(t *sql.Tx) *tx { return &tx{t: t} }

func (x *tx) Users() store.Users           { return &usersRepo{q: x.t} }
func (x *tx) LoginCodes() store.LoginCodes { return &loginCodesRepo{q: x.t} }

func (x *tx) Commit() error   { return x.t.Commit() }
func (x *tx) Rollback() error { return x.t.Rollback() }

func (x *tx) ApplyMigrations() error {
	return errors.New("sqlite: migrations cannot run inside a transaction")
}

func (x *tx) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errors.New("sqlite: nested transactions are not supported")
}

func (x *tx) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errors.New("sqlite: nested transactions are not supported")
}

func (x *tx) Close() error { return nil }

func (x *tx) Ping(ctx context.Context) error { return nil }
