package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/commerce-admin/internal/config"
	"github.com/deppfellow/commerce-admin/internal/errs"
	"github.com/deppfellow/commerce-admin/internal/model"
	"github.com/deppfellow/commerce-admin/internal/model/user"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{Server: config.ServerConfig{RateLimit: 1}},
		Logger: &logger,
	}
}

type tokenResolver map[string]*user.User

func (r tokenResolver) RetrieveByAPIToken(_ context.Context, token string) (*user.User, error) {
	if u, ok := r[token]; ok {
		return u, nil
	}
	return nil, errs.NewNotFoundError("User not found", true, nil)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	h := RequestID()(func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	generated := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
}

func TestEnhanceContextStoresLogger(t *testing.T) {
	e := echo.New()
	ce := NewContextEnhancer(newTestServer())

	var fromCtx *zerolog.Logger
	h := ce.EnhanceContext()(func(c echo.Context) error {
		fromCtx = zerolog.Ctx(c.Request().Context())
		assert.Same(t, GetLogger(c), c.Get(LoggerKey))
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, h(e.NewContext(req, httptest.NewRecorder())))
	assert.NotNil(t, fromCtx)
}

func TestGlobalErrorHandler(t *testing.T) {
	e := echo.New()
	global := NewGlobalMiddlewares(newTestServer())

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"http error", errs.NewConflictError("dup", true, errs.Code("USER_ALREADY_EXISTS")), http.StatusConflict, "USER_ALREADY_EXISTS"},
		{"unknown route", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"method not allowed", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"unique violation", &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_email_key"}, http.StatusConflict, "USER_ALREADY_EXISTS"},
		{"opaque", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			global.GlobalErrorHandler(tc.err, c)

			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestGlobalErrorHandlerHidesInternalCause(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewGlobalMiddlewares(newTestServer()).GlobalErrorHandler(errors.New("dial tcp 10.0.0.1:5432"), c)

	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}

func runAuth(t *testing.T, auth *AuthMiddleware, req *http.Request) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := auth.RequireAuth(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(c)
	return rec, c, err
}

func TestRequireAuthWithoutCredentials(t *testing.T) {
	auth := NewAuthMiddleware(newTestServer(), tokenResolver{})

	_, _, err := runAuth(t, auth, httptest.NewRequest(http.MethodPost, "/admin/users", nil))

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
}

func TestRequireAuthWithAPIToken(t *testing.T) {
	id := uuid.New()
	auth := NewAuthMiddleware(newTestServer(), tokenResolver{
		"good-token": {Base: model.Base{ID: id}, Email: "ada@example.com", Role: user.RoleAdmin},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/store", nil)
	req.Header.Set(AccessTokenHeader, "good-token")
	rec, c, err := runAuth(t, auth, req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id.String(), GetUserID(c))
	assert.Equal(t, "admin", c.Get(UserRoleKey))
	assert.Equal(t, AuthMethodAPIToken, c.Get(AuthMethodKey))
}

func TestRequireAuthRejectsUnknownAPIToken(t *testing.T) {
	auth := NewAuthMiddleware(newTestServer(), tokenResolver{})

	req := httptest.NewRequest(http.MethodGet, "/admin/store", nil)
	req.Header.Set(AccessTokenHeader, "bad-token")
	_, c, err := runAuth(t, auth, req)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Empty(t, GetUserID(c))
}

func TestRateLimitDisabledAtZero(t *testing.T) {
	s := newTestServer()
	s.Config.Server.RateLimit = 0

	e := echo.New()
	h := NewRateLimitMiddleware(s).Limit()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for range 5 {
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestRateLimitDeniesBurst(t *testing.T) {
	e := echo.New()
	h := NewRateLimitMiddleware(newTestServer()).Limit()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		return e.NewContext(req, httptest.NewRecorder())
	}

	require.NoError(t, h(newCtx()))

	err := h(newCtx())
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
}
