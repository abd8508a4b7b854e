package service

import (
	"github.com/deppfellow/commerce-admin/internal/lib/job"
	"github.com/deppfellow/commerce-admin/internal/repository"
	"github.com/deppfellow/commerce-admin/internal/server"
)

type Services struct {
	Auth  *AuthService
	Store *StoreService
	User  *UserService
	Job   *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)
	cache := NewStoreCache(s.Redis, s.Config.Redis.StoreCacheTTL)

	return &Services{
		Auth:  authService,
		Store: NewStoreService(repos, cache),
		User:  NewUserService(repos, s.Config.Auth.BcryptCost),
		Job:   s.Job,
	}, nil
}
