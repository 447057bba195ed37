package service

import (
	"members-portal/internal/config"
	"members-portal/internal/repository"
)

type Services struct {
	Auth  *AuthService
	Admin *AdminService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	return &Services{
		Auth:  NewAuthService(repos.User, repos.Session, cfg),
		Admin: NewAdminService(repos.User, cfg),
	}
}
