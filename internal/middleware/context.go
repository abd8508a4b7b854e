package middleware

import (
	"github.com/deppfellow/commerce-admin/internal/logger"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	UserIDKey     = "user_id"
	UserRoleKey   = "user_role"
	AuthMethodKey = "auth_method"
	LoggerKey     = "logger"
)

// ContextEnhancer gives every request its own logger carrying request_id,
// method, path, ip and, when New Relic is on, the trace ids.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext stores the request logger on the echo context and on the
// request's context.Context, where zerolog.Ctx finds it.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setLogger(c, contextLogger)
			return next(c)
		}
	}
}

func setLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
}

// SetIdentity records the authenticated caller and adds it to the request
// logger.
func SetIdentity(c echo.Context, userID, role, method string) {
	c.Set(UserIDKey, userID)
	c.Set(UserRoleKey, role)
	c.Set(AuthMethodKey, method)

	l := GetLogger(c).With().Str("user_id", userID).Logger()
	if role != "" {
		l = l.With().Str("user_role", role).Logger()
	}
	setLogger(c, l)
}

func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetLogger returns the request logger, or a no-op logger outside the
// middleware chain.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}

	l := zerolog.Nop()
	return &l
}
