package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"members-portal/internal/config"
	"members-portal/internal/domain"
	"members-portal/internal/repository"
)

// AdminService backs the admin panel: listing accounts and toggling roles.
type AdminService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAdminService(userRepo repository.UserRepository, cfg *config.Config) *AdminService {
	return &AdminService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	users, err := s.userRepo.List(cctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) Promote(ctx context.Context, email string) error {
	return s.setRole(ctx, email, domain.RoleAdmin)
}

func (s *AdminService) Demote(ctx context.Context, email string) error {
	return s.setRole(ctx, email, domain.RoleUser)
}

func (s *AdminService) setRole(ctx context.Context, email string, role domain.Role) error {
	if !role.IsValid() {
		return domain.ErrInvalidRole
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err := s.userRepo.UpdateRole(cctx, NormalizeEmail(email), role)
	cancel()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}
