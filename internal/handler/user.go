package handler

import (
	"context"

	"github.com/deppfellow/commerce-admin/internal/database"
	"github.com/deppfellow/commerce-admin/internal/middleware"
	"github.com/deppfellow/commerce-admin/internal/model/user"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/deppfellow/commerce-admin/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// WelcomeEnqueuer queues the welcome email for a new user.
type WelcomeEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, to, firstName string) error
}

type UserHandler struct {
	Handler
	tx    database.TxManager
	users *service.UserService
	jobs  WelcomeEnqueuer
}

// NewUserHandler builds the handler; jobs may be nil, in which case no
// welcome email is sent.
func NewUserHandler(s *server.Server, tx database.TxManager, users *service.UserService, jobs WelcomeEnqueuer) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		tx:      tx,
		users:   users,
		jobs:    jobs,
	}
}

// CreateUser creates an admin user. The password goes to the service on its
// own and never reaches the response.
func (h *UserHandler) CreateUser(c echo.Context, payload *user.CreateUserPayload) (*user.UserResponse, error) {
	ctx := c.Request().Context()
	input := payload.Input()

	var created *user.User
	err := h.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		created, err = h.users.WithTx(tx).Create(ctx, input, payload.Password)
		return err
	})
	if err != nil {
		return nil, err
	}

	if h.jobs != nil {
		if err := h.jobs.EnqueueWelcomeEmail(ctx, created.Email, created.DisplayName()); err != nil {
			middleware.GetLogger(c).Warn().
				Err(err).
				Str("created_user_id", created.ID.String()).
				Msg("could not enqueue welcome email")
		}
	}

	return &user.UserResponse{User: created}, nil
}

func (h *UserHandler) GetUser(c echo.Context, payload *user.GetUserByIDPayload) (*user.UserResponse, error) {
	u, err := h.users.Retrieve(c.Request().Context(), payload.UUID())
	if err != nil {
		return nil, err
	}
	return &user.UserResponse{User: u}, nil
}

func (h *UserHandler) ListUsers(c echo.Context, _ *user.ListUsersPayload) (*user.UsersResponse, error) {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []user.User{}
	}
	return &user.UsersResponse{Users: users}, nil
}
