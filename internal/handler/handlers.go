// Package handler is the HTTP layer. Each endpoint is a typed function run
// through Handle, which binds and validates the payload, logs and traces the
// call, and writes the result; the function itself only calls services.
package handler

import (
	"github.com/deppfellow/commerce-admin/internal/database"
	"github.com/deppfellow/commerce-admin/internal/server"
	"github.com/deppfellow/commerce-admin/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Store   *StoreHandler
	User    *UserHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	var tx database.TxManager = s.DB

	var jobs WelcomeEnqueuer
	if services.Job != nil {
		jobs = services.Job
	}

	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Store:   NewStoreHandler(s, tx, services.Store),
		User:    NewUserHandler(s, tx, services.User, jobs),
	}
}
