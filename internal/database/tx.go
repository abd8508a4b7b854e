package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TxFunc is the unit of work run inside a transaction. The tx must not be
// used after the function returns.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// TxManager opens a transaction, runs fn, and commits when fn returns nil.
// Any error (or panic) rolls everything back; callers never observe a partial write.
type TxManager interface {
	WithTx(ctx context.Context, fn TxFunc) error
}

var _ TxManager = (*Database)(nil)

// WithTx runs fn in a read-committed transaction on the pool.
func (db *Database) WithTx(ctx context.Context, fn TxFunc) error {
	err := pgx.BeginTxFunc(ctx, db.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("transaction rolled back")
	}
	return err
}
