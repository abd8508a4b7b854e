package router

import (
	"net/http"

	"github.com/deppfellow/commerce-admin/internal/handler"
	"github.com/deppfellow/commerce-admin/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerAdminRoutes mounts the back-office API. Every route is rate
// limited per client and requires an authenticated caller.
func registerAdminRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	admin := r.Group("/admin", m.RateLimit.Limit(), m.Auth.RequireAuth)

	storeGroup := admin.Group("/store")
	storeGroup.GET("", handler.Handle(h.Store.GetStore, http.StatusOK))
	storeGroup.POST("/currencies/:code", handler.Handle(h.Store.AddCurrency, http.StatusOK))
	storeGroup.DELETE("/currencies/:code", handler.Handle(h.Store.RemoveCurrency, http.StatusOK))

	users := admin.Group("/users")
	users.GET("", handler.Handle(h.User.ListUsers, http.StatusOK))
	users.POST("", handler.Handle(h.User.CreateUser, http.StatusOK))
	users.GET("/:id", handler.Handle(h.User.GetUser, http.StatusOK))
}
