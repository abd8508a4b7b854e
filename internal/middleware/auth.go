package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/commerce-admin/internal/errs"
	"github.com/deppfellow/commerce-admin/internal/model/user"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	// AccessTokenHeader carries a user's API token.
	AccessTokenHeader = "X-Access-Token"

	// SessionCookie is the Clerk session cookie set by the dashboard.
	SessionCookie = "__session"
)

const (
	AuthMethodAPIToken = "api_token"
	AuthMethodSession  = "session"
)

// TokenResolver looks up the user an API token belongs to.
type TokenResolver interface {
	RetrieveByAPIToken(ctx context.Context, token string) (*user.User, error)
}

type AuthMiddleware struct {
	server *server.Server
	users  TokenResolver
}

func NewAuthMiddleware(s *server.Server, users TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		users:  users,
	}
}

// RequireAuth accepts, in order: an X-Access-Token API token, a Clerk
// session token in "Authorization: Bearer", or the same token in the
// __session cookie. Anything else is a 401.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	sessionAuth := echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized)),
		),
	)(auth.requireSessionClaims(next))

	return func(c echo.Context) error {
		if token := c.Request().Header.Get(AccessTokenHeader); token != "" {
			return auth.authenticateAPIToken(c, token, next)
		}

		if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+cookie.Value)
			}
		}

		return sessionAuth(c)
	}
}

func (auth *AuthMiddleware) authenticateAPIToken(c echo.Context, token string, next echo.HandlerFunc) error {
	u, err := auth.users.RetrieveByAPIToken(c.Request().Context(), token)
	if err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			GetLogger(c).Warn().
				Str("function", "RequireAuth").
				Msg("unknown api token")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}
		return err
	}

	SetIdentity(c, u.ID.String(), string(u.Role), AuthMethodAPIToken)
	GetLogger(c).Debug().Msg("user authenticated with api token")

	return next(c)
}

func (auth *AuthMiddleware) requireSessionClaims(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
		if !ok {
			GetLogger(c).Warn().
				Str("function", "RequireAuth").
				Msg("no credentials on request")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		SetIdentity(c, claims.Subject, claims.ActiveOrganizationRole, AuthMethodSession)
		GetLogger(c).Debug().Msg("user authenticated with session")

		return next(c)
	}
}

// writeUnauthorized answers a rejected session token. Clerk calls it outside
// echo's error handling, so it writes the error body itself.
func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Msg("session token rejected")
}
