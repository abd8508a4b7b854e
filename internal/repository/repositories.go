package repository

import (
	"context"

	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs on the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories is a container for all repository instances.
type Repositories struct {
	Store    StoreRepository
	Currency CurrencyRepository
	User     UserRepository
}

// NewRepositories binds every repository to the server's connection pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Store:    NewStoreRepository(s.DB.Pool),
		Currency: NewCurrencyRepository(s.DB.Pool),
		User:     NewUserRepository(s.DB.Pool),
	}
}
