package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/commerce-admin/internal/errs"
	"github.com/deppfellow/commerce-admin/internal/model/user"
	"github.com/deppfellow/commerce-admin/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

func NewUserService(repos *repository.Repositories, bcryptCost int) *UserService {
	return &UserService{
		users:      repos.User,
		bcryptCost: bcryptCost,
	}
}

// WithTx returns a copy whose repository runs on tx.
func (s *UserService) WithTx(tx pgx.Tx) *UserService {
	return &UserService{
		users:      s.users.WithTx(tx),
		bcryptCost: s.bcryptCost,
	}
}

func errUserNotFound() *errs.HTTPError {
	return errs.NewNotFoundError("User not found", true, errs.Code("USER_NOT_FOUND"))
}

// Create stores a new user with a bcrypt hash of password and a fresh API
// token. Emails are compared case-insensitively.
func (s *UserService) Create(ctx context.Context, input user.CreateUserInput, password string) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if existing != nil {
		return nil, errs.NewConflictError(
			"A user with this email already exists",
			true,
			errs.Code("USER_ALREADY_EXISTS"),
		)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errs.NewBadRequestError(
				"Validation failed",
				true,
				nil,
				[]errs.FieldError{{Field: "password", Error: "must be at most 72 bytes"}},
				nil,
			)
		}
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	role := input.Role
	if !role.Valid() {
		role = user.DefaultRole
	}

	token := newAPIToken()

	created, err := s.users.CreateUser(ctx, &user.User{
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		PasswordHash: string(hash),
		APIToken:     &token,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return created, nil
}

func newAPIToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func (s *UserService) Retrieve(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errUserNotFound()
		}
		return nil, fmt.Errorf("retrieving user: %w", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// RetrieveByAPIToken resolves the user behind an X-Access-Token header.
func (s *UserService) RetrieveByAPIToken(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, errUserNotFound()
	}

	u, err := s.users.GetUserByAPIToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errUserNotFound()
		}
		return nil, fmt.Errorf("retrieving user by token: %w", err)
	}
	return u, nil
}
