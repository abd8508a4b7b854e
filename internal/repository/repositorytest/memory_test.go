package repositorytest

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/commerce-admin/internal/model/user"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currencyCodes(db *DB) []string {
	var codes []string
	for _, c := range db.Store().Currencies {
		codes = append(codes, c.Code)
	}
	return codes
}

func TestTxManagerCommitsOnSuccess(t *testing.T) {
	db := NewDB()
	st := db.SeedStore("usd")
	tx := &TxManager{DB: db}

	err := tx.WithTx(context.Background(), func(ctx context.Context, _ pgx.Tx) error {
		_, err := db.Repositories().Store.AddCurrency(ctx, st.ID, "eur")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"usd", "eur"}, currencyCodes(db))
	assert.Equal(t, 1, db.StoreWrites())
	assert.Equal(t, 1, tx.Calls())
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	db := NewDB()
	st := db.SeedStore("usd")
	tx := &TxManager{DB: db}
	repos := db.Repositories()
	failed := errors.New("boom")

	err := tx.WithTx(context.Background(), func(ctx context.Context, _ pgx.Tx) error {
		if _, err := repos.Store.AddCurrency(ctx, st.ID, "eur"); err != nil {
			return err
		}
		if _, err := repos.User.CreateUser(ctx, &user.User{Email: "ada@example.com"}); err != nil {
			return err
		}
		return failed
	})

	require.ErrorIs(t, err, failed)
	assert.Equal(t, []string{"usd"}, currencyCodes(db))
	assert.Empty(t, db.Users())
	assert.Zero(t, db.StoreWrites())
	assert.Zero(t, db.UserWrites())
}

func TestTxManagerRollsBackOnPanic(t *testing.T) {
	db := NewDB()
	st := db.SeedStore("usd")
	tx := &TxManager{DB: db}

	assert.PanicsWithValue(t, "boom", func() {
		_ = tx.WithTx(context.Background(), func(ctx context.Context, _ pgx.Tx) error {
			_, _ = db.Repositories().Store.AddCurrency(ctx, st.ID, "eur")
			panic("boom")
		})
	})

	assert.Equal(t, []string{"usd"}, currencyCodes(db))
	assert.Zero(t, db.StoreWrites())
}
