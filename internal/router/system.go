package router

import (
	"github.com/deppfellow/commerce-admin/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the unauthenticated health and docs routes.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
