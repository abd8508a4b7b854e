package database

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDatabaseURLEnv points the transaction tests at a disposable Postgres.
const testDatabaseURLEnv = "COMMERCE_TEST_DATABASE_URL"

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &Database{Pool: pool}
}

func tableExists(t *testing.T, db *Database, table string) bool {
	t.Helper()

	var name *string
	err := db.Pool.QueryRow(context.Background(), "SELECT to_regclass($1)::text", table).Scan(&name)
	require.NoError(t, err)
	return name != nil
}

func scratchTable() string {
	return "tx_check_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func TestWithTxCommits(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	table := scratchTable()
	t.Cleanup(func() { _, _ = db.Pool.Exec(ctx, "DROP TABLE IF EXISTS "+table) })

	err := db.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "CREATE TABLE "+table+" (id int)")
		return err
	})

	require.NoError(t, err)
	assert.True(t, tableExists(t, db, table))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	table := scratchTable()
	failed := errors.New("boom")

	err := db.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "CREATE TABLE "+table+" (id int)"); err != nil {
			return err
		}
		return failed
	})

	require.ErrorIs(t, err, failed)
	assert.False(t, tableExists(t, db, table))
}
