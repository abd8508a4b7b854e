package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/commerce-admin/internal/model/user"
	"github.com/deppfellow/commerce-admin/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository persists admin users. Soft-deleted users are invisible to
// every lookup.
type UserRepository interface {
	WithTx(tx pgx.Tx) UserRepository
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetUserByAPIToken(ctx context.Context, token string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx pgx.Tx) UserRepository {
	return &userRepository{db: tx}
}

const userColumns = `id, email, first_name, last_name, role, password_hash, api_token, created_at, updated_at, deleted_at`

func (r *userRepository) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO users (email, first_name, last_name, role, password_hash, api_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.Email, u.FirstName, u.LastName, u.Role, u.PasswordHash, u.APIToken,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	created, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return created, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *userRepository) GetUserByAPIToken(ctx context.Context, token string) (*user.User, error) {
	return r.getOne(ctx, "api_token = $1", token)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*user.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL AND `+where,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NoRows("users")
		}
		return nil, fmt.Errorf("failed to collect user: %w", err)
	}

	return u, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[user.User])
	if err != nil {
		return nil, fmt.Errorf("failed to collect users: %w", err)
	}

	return users, nil
}
