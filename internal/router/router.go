// Package router builds the echo instance: the global middleware chain, the
// system routes and the authenticated /admin API.
package router

import (
	"github.com/deppfellow/commerce-admin/internal/handler"
	"github.com/deppfellow/commerce-admin/internal/middleware"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/deppfellow/commerce-admin/internal/service"
	"github.com/labstack/echo/v4"
)

// NewRouter wires middleware and routes. Order matters: the request id must
// exist before the request logger is built, and New Relic must have started
// the transaction before the logger reads its trace ids.
func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.User)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerAdminRoutes(router, h, middlewares)

	return router
}
